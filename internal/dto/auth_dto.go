package dto

type LoginRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginResponse struct {
	Token        string          `json:"token"`
	RefreshToken string          `json:"refresh_token"`
	Usuario      UsuarioResponse `json:"usuario"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type CrearUsuarioRequest struct {
	Username string  `json:"username" validate:"required,min=3"`
	Nombre   string  `json:"nombre"   validate:"required,min=2"`
	Password string  `json:"password" validate:"required,min=6"`
	Rol      string  `json:"rol"      validate:"required,oneof=cajero vendedor administrador"`
	DNI      *string `json:"dni"      validate:"omitempty,len=8,numeric"`
	Email    *string `json:"email"    validate:"omitempty,email"`
}

type ActualizarUsuarioRequest struct {
	Nombre   string  `json:"nombre"`
	Password *string `json:"password" validate:"omitempty,min=6"`
	Rol      *string `json:"rol"      validate:"omitempty,oneof=cajero vendedor administrador"`
	Email    *string `json:"email"    validate:"omitempty,email"`
	Activo   *bool   `json:"activo"`
}

type UsuarioResponse struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Nombre   string  `json:"nombre"`
	Rol      string  `json:"rol"`
	DNI      *string `json:"dni,omitempty"`
	Email    *string `json:"email,omitempty"`
	Activo   bool    `json:"activo"`
}
