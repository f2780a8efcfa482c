package apperr

import "github.com/labstack/echo/v4"

// Echo converts a service error into the echo error handlers return,
// using the shared status mapping.
func Echo(err error) *echo.HTTPError {
	return echo.NewHTTPError(HTTPStatus(err), err.Error())
}
