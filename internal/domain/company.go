package domain

import "time"

// Company representa una compania registrada en la plataforma.
type Company struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CompanyMembership es una entrada del directorio de companias del usuario.
// El orden de la lista no es significativo.
type CompanyMembership struct {
	CompanyID   string `json:"companyId"`
	CompanyName string `json:"companyName"`
}
