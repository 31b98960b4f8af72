package domain

import "time"

// Identity es el snapshot inmutable del usuario autenticado. Se reemplaza
// completo en login y en cambio de compania, nunca se muta campo a campo.
type Identity struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	CompanyID string `json:"companyId"`
	Position  string `json:"position,omitempty"`
}

// User es el registro persistido, con credenciales que nunca se exponen.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Role          Role      `json:"role"`
	Position      string    `json:"position,omitempty"`
	PasswordHash  string    `json:"-"`
	HomeCompanyID string    `json:"home_company_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// IdentityFor construye el snapshot de sesion para un usuario actuando
// dentro de una compania concreta.
func IdentityFor(u User, companyID string) Identity {
	return Identity{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CompanyID: companyID,
		Position:  u.Position,
	}
}
