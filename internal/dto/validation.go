package dto

import (
	"fmt"
	"reflect"

	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// RegisterValidators installs the custom binding rules used by the request
// DTOs. Tags like gt=0 then also work on decimal.Decimal fields.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})

	rules := map[string]validator.Func{
		"txtype":      validTransactionType,
		"ruletype":    validRuleType,
		"ruletrigger": validRuleTrigger,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("failed to register %s validator: %w", tag, err)
		}
	}
	return nil
}

func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

func validTransactionType(fl validator.FieldLevel) bool {
	return domain.TransactionType(fl.Field().String()).IsValid()
}

func validRuleType(fl validator.FieldLevel) bool {
	return domain.RuleType(fl.Field().String()).IsValid()
}

func validRuleTrigger(fl validator.FieldLevel) bool {
	return domain.RuleTrigger(fl.Field().String()).IsValid()
}
