package http_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	pkgjwt "github.com/jhoicas/estoque-api/pkg/jwt"
)

func TestAuthMiddleware_SinHeader(t *testing.T) {
	env := newTestEnv(t)
	var body errorBody
	status := call(t, env.app, http.MethodGet, "/api/items", "", nil, &body)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "MISSING_TOKEN", body.Code)
}

func TestAuthMiddleware_FormatoInvalido(t *testing.T) {
	env := newTestEnv(t)
	var body errorBody
	status := call(t, env.app, http.MethodGet, "/api/items", "Token abc", nil, &body)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_TOKEN", body.Code)
}

func TestAuthMiddleware_FirmaIncorrecta(t *testing.T) {
	env := newTestEnv(t)
	tok, err := pkgjwt.Generate("otro-secreto", adminID, "admin", testIssuer, 60)
	assert.NoError(t, err)

	var body errorBody
	status := call(t, env.app, http.MethodGet, "/api/items", "Bearer "+tok, nil, &body)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_TOKEN", body.Code)
}

func TestAuthMiddleware_UsuarioDesconocido(t *testing.T) {
	env := newTestEnv(t)
	var body errorBody
	status := call(t, env.app, http.MethodGet, "/api/items", bearer(t, "00000000-0000-0000-0000-0000000000ee"), nil, &body)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHENTICATED", body.Code)
}

func TestAuthMiddleware_SinLoginEsNoAutenticado(t *testing.T) {
	env := newTestEnv(t)
	var body errorBody
	status := call(t, env.app, http.MethodGet, "/api/items", bearer(t, semLogin), nil, &body)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHENTICATED", body.Code)
}

func TestRequireCapability_EntradaSinPermisoDevuelve403(t *testing.T) {
	env := newTestEnv(t)
	var body errorBody
	status := call(t, env.app, http.MethodPost, "/api/items", bearer(t, balcaoID), map[string]any{
		"name": "Máscaras", "category": "EPI", "quantity": 10,
	}, &body)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", body.Code)
	assert.Contains(t, body.Message, "editarEstoque")
}

func TestRequireCapability_LecturaConLogin(t *testing.T) {
	env := newTestEnv(t)
	var list struct {
		Items []map[string]any `json:"items"`
		Total int              `json:"total"`
	}
	status := call(t, env.app, http.MethodGet, "/api/items", bearer(t, leitorID), nil, &list)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, list.Total)
	assert.Equal(t, "Gloves", list.Items[0]["name"])
}
