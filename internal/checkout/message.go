package checkout

import (
	"encoding/json"
	"errors"
	"strings"
)

const (
	EmptyCartMessage      = "Cart is empty!"
	DefaultSuccessMessage = "Order placed successfully!"
	DefaultFailureMessage = "Failed to place order"
)

// responseBodyError is implemented by errors that carry a server response.
type responseBodyError interface {
	error
	ResponseBody() []byte
}

// SuccessMessage picks the text shown for an accepted order: a plain string
// body verbatim, else its message field, else a generic text.
func SuccessMessage(body []byte) string {
	if msg, ok := bodyString(body); ok {
		return msg
	}
	if msg := bodyField(body, "message"); msg != "" {
		return msg
	}
	return DefaultSuccessMessage
}

// FailureMessage picks the text shown for a failed order. Server bodies win in
// the order string, message, error; without a server response the transport
// error text is used.
func FailureMessage(err error) string {
	var withBody responseBodyError
	if errors.As(err, &withBody) {
		body := withBody.ResponseBody()

		if msg, ok := bodyString(body); ok {
			return msg
		}
		for _, field := range []string{"message", "error"} {
			if msg := bodyField(body, field); msg != "" {
				return msg
			}
		}
		return DefaultFailureMessage
	}

	if err != nil && err.Error() != "" {
		return err.Error()
	}

	return DefaultFailureMessage
}

// bodyString reports the body as a string when it is a JSON string or not JSON at all.
func bodyString(body []byte) (string, bool) {
	if strings.TrimSpace(string(body)) == "" {
		return "", false
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return string(body), true
	}

	s, ok := decoded.(string)
	return s, ok
}

func bodyField(body []byte, field string) string {
	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil {
		return ""
	}

	s, _ := obj[field].(string)
	return s
}
