package server

import (
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const maxNameLength = 20

var validatorOnce sync.Once

func registerValidators() {
	validatorOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = engine.RegisterValidation("roomid", func(fl validator.FieldLevel) bool {
			return isRoomID(fl.Field().String())
		})
		_ = engine.RegisterValidation("displayname", func(fl validator.FieldLevel) bool {
			return len(normalizeText(fl.Field().String())) <= maxNameLength
		})
	})
}

func normalizeText(text string) string {
	fields := strings.Fields(strings.TrimSpace(text))
	return strings.Join(fields, " ")
}
