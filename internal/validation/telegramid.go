package validation

import (
	"fmt"
	"regexp"
)

// TelegramIDPattern определяет допустимый формат telegram_id:
// только цифры, без ведущего нуля, разумная длина.
var TelegramIDPattern = regexp.MustCompile(`^[1-9][0-9]{0,18}$`)

// ValidateTelegramID проверяет строковую форму числового Telegram ID.
// Строки "undefined" и "null" приходят от сломанных клиентов и
// считаются таким же невалидным входом, как пустая строка.
func ValidateTelegramID(id string) error {
	if id == "" {
		return fmt.Errorf("telegram id cannot be empty")
	}

	if id == "undefined" || id == "null" {
		return fmt.Errorf("telegram id has placeholder value %q", id)
	}

	if !TelegramIDPattern.MatchString(id) {
		return fmt.Errorf("telegram id must be a positive integer")
	}

	return nil
}
