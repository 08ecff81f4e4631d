package handlers

import (
  "math"
  "net/http"
  "strconv"

  "github.com/gin-gonic/gin"

  "github.com/saffron-speech/saffron-backend/internal/apierr"
)

type APIError struct {
  Message string `json:"message"`
  Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
  Error APIError `json:"error"`
}

// RespondError maps a typed api error onto its status; anything untyped
// becomes a generic 500 so stack traces and query text never leak out.
func RespondError(c *gin.Context, err error) {
  apiErr := apierr.From(err)
  c.JSON(apiErr.Status, ErrorEnvelope{
    Error: APIError{
      Message: apiErr.Error(),
      Code:    apiErr.Code,
    },
  })
}

func RespondOK(c *gin.Context, payload any) {
  c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
  c.JSON(http.StatusCreated, payload)
}

// uintParam parses a positive integer path parameter.
func uintParam(c *gin.Context, name string) (uint, bool) {
  raw := c.Param(name)
  val, err := strconv.ParseUint(raw, 10, 64)
  if err != nil {
    return 0, false
  }
  return uint(val), true
}

// markerString normalizes an item marker that clients send either as a JSON
// number or a string. Fractional numbers are kept verbatim rather than
// truncated, so a malformed marker cannot collapse onto a real item id; the
// completed-item set drops anything that is not an integer.
func markerString(raw any) string {
  switch v := raw.(type) {
  case nil:
    return ""
  case string:
    return v
  case float64:
    if v == math.Trunc(v) {
      return strconv.Itoa(int(v))
    }
    return strconv.FormatFloat(v, 'f', -1, 64)
  default:
    return ""
  }
}
