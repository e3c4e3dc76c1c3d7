package service

import (
	"context"
	"errors"
	"testing"

	"minimarket/internal/config"
	"minimarket/internal/dto"
	"minimarket/internal/model"
	"minimarket/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type stubUsuarioRepo struct {
	usuarios map[uuid.UUID]*model.Usuario
}

func newStubUsuarioRepo(usuarios ...*model.Usuario) *stubUsuarioRepo {
	r := &stubUsuarioRepo{usuarios: make(map[uuid.UUID]*model.Usuario)}
	for _, u := range usuarios {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		r.usuarios[u.ID] = u
	}
	return r
}

func (r *stubUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.usuarios[u.ID] = u
	return nil
}

func (r *stubUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	u, ok := r.usuarios[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return u, nil
}

func (r *stubUsuarioRepo) FindByUsername(_ context.Context, username string) (*model.Usuario, error) {
	for _, u := range r.usuarios {
		if u.Username == username && u.Activo {
			return u, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubUsuarioRepo) List(_ context.Context) ([]model.Usuario, error) {
	var out []model.Usuario
	for _, u := range r.usuarios {
		if u.Activo {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *stubUsuarioRepo) ListAll(_ context.Context) ([]model.Usuario, error) {
	var out []model.Usuario
	for _, u := range r.usuarios {
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUsuarioRepo) Update(_ context.Context, u *model.Usuario) error {
	r.usuarios[u.ID] = u
	return nil
}

func (r *stubUsuarioRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if u, ok := r.usuarios[id]; ok {
		u.Activo = false
	}
	return nil
}

func (r *stubUsuarioRepo) Reactivar(_ context.Context, id uuid.UUID) error {
	if u, ok := r.usuarios[id]; ok {
		u.Activo = true
	}
	return nil
}

var _ repository.UsuarioRepository = (*stubUsuarioRepo)(nil)

func testConfig() *config.Config {
	return &config.Config{JWTSecret: "test-secret", JWTExpirationHours: 8, JWTRefreshHours: 72}
}

func cajero(username, password string) *model.Usuario {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return &model.Usuario{
		Username:     username,
		Nombre:       "Cajero de Prueba",
		PasswordHash: string(hash),
		Rol:          "cajero",
		Activo:       true,
	}
}

func TestLogin_OK(t *testing.T) {
	repo := newStubUsuarioRepo(cajero("mquispe", "secreta123"))
	svc := NewAuthService(repo, testConfig())

	resp, err := svc.Login(context.Background(), dto.LoginRequest{
		Username: "mquispe",
		Password: "secreta123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, "mquispe", resp.Usuario.Username)
	assert.Equal(t, "cajero", resp.Usuario.Rol)

	// El token firma user_id, username y rol con HS256.
	parsed, err := jwt.Parse(resp.Token, func(_ *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "mquispe", claims["username"])
	assert.Equal(t, "cajero", claims["rol"])
}

func TestRefresh_EmiteParNuevo(t *testing.T) {
	repo := newStubUsuarioRepo(cajero("mquispe", "secreta123"))
	svc := NewAuthService(repo, testConfig())

	login, err := svc.Login(context.Background(), dto.LoginRequest{
		Username: "mquispe",
		Password: "secreta123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, login.RefreshToken)

	resp, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "mquispe", resp.Usuario.Username)
}

func TestRefresh_UsuarioDesactivado(t *testing.T) {
	u := cajero("mquispe", "secreta123")
	repo := newStubUsuarioRepo(u)
	svc := NewAuthService(repo, testConfig())

	login, err := svc.Login(context.Background(), dto.LoginRequest{
		Username: "mquispe",
		Password: "secreta123",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DesactivarUsuario(context.Background(), u.ID))
	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inactivo")
}

func TestRefresh_TokenInvalido(t *testing.T) {
	svc := NewAuthService(newStubUsuarioRepo(), testConfig())
	_, err := svc.Refresh(context.Background(), "no-es-un-jwt")
	require.Error(t, err)
}

func TestLogin_PasswordIncorrecta(t *testing.T) {
	repo := newStubUsuarioRepo(cajero("mquispe", "secreta123"))
	svc := NewAuthService(repo, testConfig())

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Username: "mquispe",
		Password: "otra",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credenciales")
}

func TestLogin_UsuarioInactivo(t *testing.T) {
	u := cajero("mquispe", "secreta123")
	u.Activo = false
	repo := newStubUsuarioRepo(u)
	svc := NewAuthService(repo, testConfig())

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Username: "mquispe",
		Password: "secreta123",
	})
	require.Error(t, err)
}

func TestCrearUsuario_HasheaPassword(t *testing.T) {
	repo := newStubUsuarioRepo()
	svc := NewAuthService(repo, testConfig())

	resp, err := svc.CrearUsuario(context.Background(), dto.CrearUsuarioRequest{
		Username: "jperez",
		Nombre:   "Juan Pérez",
		Password: "clave-larga",
		Rol:      "vendedor",
	})
	require.NoError(t, err)

	id, _ := uuid.Parse(resp.ID)
	guardado := repo.usuarios[id]
	assert.NotEqual(t, "clave-larga", guardado.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(guardado.PasswordHash), []byte("clave-larga")))
}

func TestDesactivarYReactivarUsuario(t *testing.T) {
	u := cajero("mquispe", "secreta123")
	repo := newStubUsuarioRepo(u)
	svc := NewAuthService(repo, testConfig())

	require.NoError(t, svc.DesactivarUsuario(context.Background(), u.ID))
	assert.False(t, repo.usuarios[u.ID].Activo)

	require.NoError(t, svc.ReactivarUsuario(context.Background(), u.ID))
	assert.True(t, repo.usuarios[u.ID].Activo)
}
