package auth

import (
	"context"
	"net/url"

	"github.com/voluntariado/portal/internal/backend"
	"github.com/voluntariado/portal/internal/models"
)

// Repository proxies the account endpoints of the backend.
type Repository struct {
	api *backend.Client
}

// NewRepository creates an auth repository.
func NewRepository(api *backend.Client) *Repository {
	return &Repository{api: api}
}

// anonymous strips the caller's credentials: account flows never carry a
// bearer, so a 401 from them is a credential failure rather than an expired
// session.
func anonymous(ctx context.Context) context.Context {
	return backend.WithCredentials(ctx, nil)
}

// Login exchanges credentials for a token.
func (r *Repository) Login(ctx context.Context, creds models.Credentials) (*models.APIMessage, error) {
	var out models.APIMessage
	if err := r.api.Post(anonymous(ctx), "/Integracion/IniciarSesion", creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates a user with profile, location and correspondence.
func (r *Repository) Register(ctx context.Context, reg models.Registration) (*models.APIMessage, error) {
	var out models.APIMessage
	if err := r.api.Post(anonymous(ctx), "/Integracion/RegistroUsuario", reg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Activate activates an account with the token sent by e-mail.
func (r *Repository) Activate(ctx context.Context, token string) (*models.APIMessage, error) {
	var out models.APIMessage
	if err := r.api.Get(anonymous(ctx), "/Integracion/ActivarCuenta", url.Values{"token": {token}}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RequestRecovery sends a password recovery e-mail.
func (r *Repository) RequestRecovery(ctx context.Context, in models.UsernameInput) (*models.APIMessage, error) {
	var out models.APIMessage
	if err := r.api.Post(anonymous(ctx), "/Integracion/SolicitarRecuperacionPassword", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResetPassword sets a new password with a recovery token.
func (r *Repository) ResetPassword(ctx context.Context, in models.PasswordReset) (*models.APIMessage, error) {
	var out models.APIMessage
	if err := r.api.Post(anonymous(ctx), "/Integracion/RestablecerPassword", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangePassword replaces the password given the current one.
func (r *Repository) ChangePassword(ctx context.Context, in models.PasswordChange) (*models.APIMessage, error) {
	var out models.APIMessage
	if err := r.api.Post(anonymous(ctx), "/Integracion/CambiarPassword", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResendActivation sends the activation e-mail again.
func (r *Repository) ResendActivation(ctx context.Context, in models.UsernameInput) (*models.APIMessage, error) {
	var out models.APIMessage
	if err := r.api.Post(anonymous(ctx), "/Integracion/ReenviarActivacion", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
