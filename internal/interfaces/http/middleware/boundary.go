package middleware

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/invoicedash/backend/internal/domain/invoicing"
	"github.com/invoicedash/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// BoundaryMessage is the generic text of the fallback page
const BoundaryMessage = "Something went wrong!"

var fallbackPage = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Error</title></head>
<body>
<main class="flex h-full flex-col items-center justify-center">
<h2 class="text-center">{{.Message}}</h2>
<a class="mt-4 rounded-md bg-blue-500 px-4 py-2 text-sm text-white" href="{{.RetryURL}}">Try again</a>
{{if .RequestID}}<p class="mt-2 text-xs text-gray-500">Request {{.RequestID}}</p>{{end}}
</main>
</body>
</html>
`))

type fallbackData struct {
	Message   string
	RetryURL  string
	RequestID string
}

// ErrorBoundary renders a fallback for errors that handlers attached with
// c.Error without writing a response, including panics recovered by
// logger.Recovery. Browsers get a page whose "Try again" control reloads the
// failed page; JSON clients get an error body. fallbackPath is offered for
// retry when a failed form post has no same-host page to return to.
func ErrorBoundary(log *zap.Logger, fallbackPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status := boundaryStatus(err)
		requestID := GetRequestID(c)

		log.Error("Request failed",
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Error(err))

		if WantsJSON(c) {
			c.JSON(status, dto.NewErrorResponseWithRequestID(dto.ErrCodeInternal, BoundaryMessage, requestID))
			return
		}
		c.Render(status, render.HTML{
			Template: fallbackPage,
			Name:     "error",
			Data: fallbackData{
				Message:   BoundaryMessage,
				RetryURL:  retryURL(c, fallbackPath),
				RequestID: requestID,
			},
		})
	}
}

func boundaryStatus(err error) int {
	var validationErr *invoicing.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// retryURL is the page to request again: the failed page itself for a GET,
// otherwise the same-host page the form was submitted from, or fallbackPath.
func retryURL(c *gin.Context, fallbackPath string) string {
	if c.Request.Method == http.MethodGet {
		return c.Request.URL.RequestURI()
	}
	if ref, err := url.Parse(c.Request.Referer()); err == nil && ref.Host == c.Request.Host && ref.Path != "" {
		return ref.RequestURI()
	}
	if fallbackPath == "" {
		return "/"
	}
	return fallbackPath
}
