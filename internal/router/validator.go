package router

import (
	"reflect"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/yoj3289/WeNectProject/internal/logger"
)

var registerOnce sync.Once

// registerValidators 让 validator 识别 decimal.Decimal, 并注册 dgt0 (金额大于0)
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			logger.Warn("Unexpected validator engine, custom rules not registered")
			return
		}

		v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				return d.String()
			}
			return nil
		}, decimal.Decimal{})

		if err := v.RegisterValidation("dgt0", decimalPositive); err != nil {
			logger.Error("Failed to register dgt0 validator: %v", err)
		}
	})
}

func decimalPositive(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	return err == nil && d.IsPositive()
}
