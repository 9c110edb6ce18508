package app

import (
	"net/http"

	"github.com/omeyang/xapikit/internal/storageopt"
	"github.com/omeyang/xapikit/internal/users"
	"github.com/omeyang/xapikit/pkg/api/xerr"
	"github.com/omeyang/xapikit/pkg/api/xhttp"
	"github.com/omeyang/xapikit/pkg/api/xresponse"
	"github.com/omeyang/xapikit/pkg/business/xauth"
)

// WelcomeMessage GET / 的响应。
const WelcomeMessage = "welcome to xapikit"

type handlers struct {
	users    *users.Service
	renderer *xresponse.Renderer
}

func welcome(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write([]byte(`{"message":"` + WelcomeMessage + `"}`))
}

func apiRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(http.StatusText(http.StatusOK)))
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) error {
	var in users.Credentials
	if err := xhttp.DecodeJSON(r, registerSchema, &in); err != nil {
		return err
	}
	u, err := h.users.Register(r.Context(), in)
	if err != nil {
		return err
	}
	h.renderer.Success(r.Context(), w, http.StatusCreated, users.MsgRegistered, u)
	return nil
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) error {
	var in users.Credentials
	if err := xhttp.DecodeJSON(r, loginSchema, &in); err != nil {
		return err
	}
	res, err := h.users.Login(r.Context(), in)
	if err != nil {
		return err
	}
	h.renderer.Success(r.Context(), w, http.StatusOK, users.MsgLoggedIn, res)
	return nil
}

func (h *handlers) listUsers(w http.ResponseWriter, r *http.Request) error {
	page, err := h.users.List(r.Context(), storageopt.ParsePagination(r.URL.Query()))
	if err != nil {
		return err
	}
	h.renderer.Success(r.Context(), w, http.StatusOK, users.MsgListed, page)
	return nil
}

func (h *handlers) me(w http.ResponseWriter, r *http.Request) error {
	subject, ok := xauth.SubjectFromContext(r.Context())
	if !ok {
		return xerr.MissingAuthToken()
	}
	u, err := h.users.Get(r.Context(), subject.UserID)
	if err != nil {
		return err
	}
	h.renderer.Success(r.Context(), w, http.StatusOK, users.MsgMe, u)
	return nil
}
