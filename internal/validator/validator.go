// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var ethAddressRegex = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("eth_address", validateEthAddress)
		_ = v.RegisterValidation("risk_grade", validateRiskGrade)
		_ = v.RegisterValidation("insight_type", validateInsightType)
	}
}

func validateEthAddress(fl validator.FieldLevel) bool {
	return ethAddressRegex.MatchString(fl.Field().String())
}

func validateRiskGrade(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "A", "B", "C", "D", "E":
		return true
	}
	return false
}

func validateInsightType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "YIELD_POOL", "TOKEN_OPPORTUNITY":
		return true
	}
	return false
}
