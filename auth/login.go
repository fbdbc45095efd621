package auth

import (
	"net/http"

	"panel-rbac/repositories"

	restful "github.com/emicklei/go-restful/v3"
	"golang.org/x/crypto/bcrypt"
)

// LoginCredentials defines the structure of the login request
type LoginCredentials struct {
	Username string `json:"username" description:"Username for login"`
	Password string `json:"password" description:"Password for login"`
}

// LoginResponse defines the structure of the login response
type LoginResponse struct {
	Token   string `json:"token,omitempty"`
	Message string `json:"message,omitempty"`
}

// LoginRouteHandler handles POST /login.
func LoginRouteHandler(users repositories.UserRepository) restful.RouteFunction {
	return func(request *restful.Request, response *restful.Response) {
		creds := new(LoginCredentials)
		if err := request.ReadEntity(creds); err != nil {
			_ = response.WriteHeaderAndJson(http.StatusBadRequest, LoginResponse{Message: "Invalid request body: " + err.Error()}, restful.MIME_JSON)
			return
		}
		if creds.Username == "" || creds.Password == "" {
			_ = response.WriteHeaderAndJson(http.StatusBadRequest, LoginResponse{Message: "Username and password are required"}, restful.MIME_JSON)
			return
		}

		// Avoid revealing whether the user exists
		user, err := users.FindByUsername(request.Request.Context(), creds.Username)
		if err != nil {
			_ = response.WriteHeaderAndJson(http.StatusUnauthorized, LoginResponse{Message: "Invalid credentials"}, restful.MIME_JSON)
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(creds.Password)); err != nil {
			_ = response.WriteHeaderAndJson(http.StatusUnauthorized, LoginResponse{Message: "Invalid credentials"}, restful.MIME_JSON)
			return
		}

		token, err := GenerateToken(user)
		if err != nil {
			_ = response.WriteHeaderAndJson(http.StatusInternalServerError, LoginResponse{Message: "Could not generate token"}, restful.MIME_JSON)
			return
		}
		_ = response.WriteHeaderAndJson(http.StatusOK, LoginResponse{Token: token}, restful.MIME_JSON)
	}
}
