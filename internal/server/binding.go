package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type bindMessages map[string]map[string]string

// bindPayload decodes an event's data object and validates it with the same
// engine gin uses for request binding.
func bindPayload(data json.RawMessage, req any, messages bindMessages) error {
	registerValidators()
	if len(bytes.TrimSpace(data)) == 0 {
		data = json.RawMessage("{}")
	}
	if err := json.Unmarshal(data, req); err != nil {
		return fmt.Errorf("%w: malformed data", ErrInvalidPayload)
	}
	if err := binding.Validator.ValidateStruct(req); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPayload, resolveBindError(err, messages))
	}
	return nil
}

func resolveBindError(err error, messages bindMessages) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, verr := range verrs {
			if fieldMsgs, ok := messages[verr.Field()]; ok {
				if msg, ok := fieldMsgs[verr.Tag()]; ok {
					return msg
				}
			}
		}
		if len(verrs) > 0 {
			return fmt.Sprintf("%s failed %s", verrs[0].Field(), verrs[0].Tag())
		}
	}
	return "invalid request"
}
