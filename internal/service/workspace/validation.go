package workspace

import (
	"fmt"
	"strings"

	"quillhouse/internal/config"
	models "quillhouse/internal/domain/models/workspace"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// notBlank rejects strings that are empty after trimming
var notBlank = validation.By(func(value interface{}) error {
	s, ok := stringValue(value)
	if !ok {
		return nil
	}
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("cannot be blank")
	}
	return nil
})

// notReservedLabel keeps user folders from impersonating the Master folder
var notReservedLabel = validation.By(func(value interface{}) error {
	s, _ := stringValue(value)
	if strings.EqualFold(strings.TrimSpace(s), models.MasterFolderLabel) {
		return fmt.Errorf("%q is reserved", models.MasterFolderLabel)
	}
	return nil
})

var contentSize = validation.By(func(value interface{}) error {
	s, _ := stringValue(value)
	if len(s) > config.MaxContentBytes {
		return fmt.Errorf("content exceeds %d bytes", config.MaxContentBytes)
	}
	return nil
})

var labelRules = []validation.Rule{
	validation.Required,
	validation.RuneLength(1, config.MaxLabelLength),
	notBlank,
}

// stringValue unwraps string and *string values; ok is false for nil pointers and other types
func stringValue(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case *string:
		if v == nil {
			return "", false
		}
		return *v, true
	default:
		return "", false
	}
}
