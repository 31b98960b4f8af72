package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"innersignature/internal/domain"
	"innersignature/internal/session"
)

func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	baseURL := os.Getenv("SESSION_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	logger := zap.NewExample()
	defer logger.Sync()

	home, err := os.UserHomeDir()
	if err != nil {
		log.Fatal(err)
	}
	store, err := session.NewFileStore(filepath.Join(home, ".innersignature", "session.json"))
	if err != nil {
		log.Fatal(err)
	}

	api := session.NewClient(baseURL)
	ctrl := session.NewController(store, api, logger)
	directory := session.NewDirectory(ctrl, api, logger)

	for {
		// Sin sesion autenticada no se construye ninguna vista protegida.
		if ctrl.State() == session.StateAnonymous {
			if !loginFlow(ctx, reader, ctrl) {
				return
			}
			continue
		}
		if !mainMenu(ctx, reader, ctrl, directory) {
			return
		}
	}
}

func loginFlow(ctx context.Context, reader *bufio.Reader, ctrl *session.Controller) bool {
	fmt.Println("===== InnerSignature =====")
	fmt.Println("1) Login")
	fmt.Println("2) Salir")
	switch readLine(reader, "> ") {
	case "1":
		email := readLine(reader, "email: ")
		password := readLine(reader, "password: ")
		if _, err := ctrl.LoginWithPassword(ctx, email, password); err != nil {
			fmt.Printf("login fallido: %v\n", err)
		}
		return true
	case "2":
		return false
	default:
		return true
	}
}

func mainMenu(ctx context.Context, reader *bufio.Reader, ctrl *session.Controller, directory *session.Directory) bool {
	current := ctrl.Current()
	fmt.Printf("\n%s (%s), compania activa: %s\n", current.User.Name, current.User.Role, current.User.CompanyID)
	fmt.Println("Secciones visibles:")
	for _, s := range domain.NavSections(current.User.Role) {
		fmt.Printf("  - %s\n", s)
	}
	fmt.Println("1) Ver companias")
	fmt.Println("2) Cambiar de compania")
	fmt.Println("3) Logout")
	fmt.Println("4) Salir")

	switch readLine(reader, "> ") {
	case "1":
		showCompanies(ctx, ctrl, directory)
	case "2":
		switchFlow(ctx, reader, ctrl, directory)
	case "3":
		ctrl.Logout(ctx)
		fmt.Println("sesion cerrada")
	case "4":
		return false
	}
	return true
}

func showCompanies(ctx context.Context, ctrl *session.Controller, directory *session.Directory) {
	memberships, err := directory.FetchMemberCompanies(ctx)
	if err != nil {
		fmt.Printf("no se pudo cargar el directorio: %v\n", err)
		return
	}
	current := ctrl.Current()
	for i, m := range memberships {
		marker := " "
		if current.User != nil && current.User.CompanyID == m.CompanyID {
			marker = "*"
		}
		fmt.Printf("%s %d) %s (%s)\n", marker, i+1, m.CompanyName, m.CompanyID)
	}
}

func switchFlow(ctx context.Context, reader *bufio.Reader, ctrl *session.Controller, directory *session.Directory) {
	memberships, err := directory.FetchMemberCompanies(ctx)
	if err != nil {
		fmt.Printf("no se pudo cargar el directorio: %v\n", err)
		return
	}
	showCompanies(ctx, ctrl, directory)
	choice, err := strconv.Atoi(readLine(reader, "numero de compania: "))
	if err != nil || choice < 1 || choice > len(memberships) {
		fmt.Println("opcion invalida")
		return
	}
	target := memberships[choice-1]
	if _, err := ctrl.SwitchCompany(ctx, target.CompanyID); err != nil {
		if errors.Is(err, session.ErrNotAuthenticated) {
			fmt.Println("sesion expirada, volve a loguearte")
			return
		}
		fmt.Printf("no se pudo cambiar de compania: %v\n", err)
		return
	}
	// La lista se recarga para la nueva compania activa.
	if _, err := directory.FetchMemberCompanies(ctx); err != nil {
		fmt.Printf("no se pudo recargar el directorio: %v\n", err)
	}
	fmt.Printf("ahora operando como %s\n", target.CompanyName)
}

func readLine(reader *bufio.Reader, prompt string) string {
	fmt.Print(prompt)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}
