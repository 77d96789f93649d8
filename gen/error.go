package gen

import "fmt"

// GeneratorError is the fatal error type for everything the generator
// detects: scope and name violations, and the type errors the checker
// reports through it.
type GeneratorError struct {
	Message string
}

func CreateGeneratorError(message string) GeneratorError {
	return GeneratorError{Message: message}
}

func (e GeneratorError) Error() string {
	return fmt.Sprintf("[Generator Error] %s", e.Message)
}
