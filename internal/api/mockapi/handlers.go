package mockapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"adminconsole/internal/api"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultPageSize = 15
	minPassword     = 8
)

var validRoles = map[string]bool{"User": true, "Admin": true}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.logins.Add(1)

	var creds api.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, api.CodeBadRequest, "malformed request body")
		return
	}
	u, err := s.checkPassword(creds.Email, creds.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, api.CodeInvalidCredentials, "invalid credentials")
		return
	}
	token, err := s.tokens.sign(u)
	if err != nil {
		writeError(w, http.StatusInternalServerError, api.CodeBadRequest, "could not issue token")
		return
	}
	writeResult(w, http.StatusOK, api.LoginResult{ID: u.ID, Token: token})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	size := queryInt(r, "pageSize", defaultPageSize)
	if page < 1 || size < 1 {
		writeError(w, http.StatusBadRequest, api.CodeBadRequest, "page and pageSize must be positive")
		return
	}

	list, err := s.repo.List((page-1)*size, size)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeResult(w, http.StatusOK, list)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in api.User
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, api.CodeBadRequest, "malformed request body")
		return
	}
	if msg := checkUser(in, true); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, api.CodeValidation, msg)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, api.CodeBadRequest, "could not hash password")
		return
	}

	u, err := s.repo.Insert(s.newUser(in.Identity, in.Role), hash)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeResult(w, http.StatusCreated, u)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in api.User
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, api.CodeBadRequest, "malformed request body")
		return
	}
	if msg := checkUser(in, false); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, api.CodeValidation, msg)
		return
	}
	var hash []byte
	if in.Password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
		if err != nil {
			writeError(w, http.StatusInternalServerError, api.CodeBadRequest, "could not hash password")
			return
		}
		hash = h
	}

	u, err := s.repo.Update(id, in.Identity, in.Role, hash)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeResult(w, http.StatusOK, u)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.repo.Delete(id); err != nil {
		writeStoreError(w, err)
		return
	}
	writeResult(w, http.StatusOK, nil)
}

func checkUser(u api.User, create bool) string {
	switch {
	case u.Identity == "":
		return "identity is required"
	case !validRoles[u.Role]:
		return "role must be User or Admin"
	case create && len(u.Password) < minPassword, !create && u.Password != "" && len(u.Password) < minPassword:
		return "password must be at least 8 characters"
	}
	return ""
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, api.CodeBadRequest, "invalid user id")
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errNotFound):
		writeError(w, http.StatusNotFound, api.CodeNotFound, err.Error())
	case errors.Is(err, errDuplicate):
		writeError(w, http.StatusConflict, api.CodeConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, api.CodeBadRequest, err.Error())
	}
}

// writeResult always emits the result key, so a nil v encodes as
// {"result":null}.
func writeResult(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, api.CodeBadRequest, "could not encode result")
		return
	}
	writeJSON(w, status, map[string]json.RawMessage{"result": data})
}

func writeError(w http.ResponseWriter, status, code int, msg string) {
	writeJSON(w, status, api.Envelope{Error: &api.Error{Code: code, Message: msg}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
