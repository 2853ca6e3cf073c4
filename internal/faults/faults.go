package faults

import (
	"errors"
	"fmt"
)

// Taxonomia de erros do storefront. Erros de credencial e validação são
// mostrados inline pela UI; os demais abortam a operação em curso.

// AuthError carrega a mensagem de erro vinda do payload do servidor
// (credenciais inválidas, token rejeitado).
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// ValidationError é falha de validação local, antes de qualquer chamada
// de rede.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NetworkError embrulha falha de transporte ou erro 5xx genérico.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "network: " + e.Err.Error() }
func (e *NetworkError) Unwrap() error { return e.Err }

var (
	// ErrSessionExpired indica que o refresh silencioso falhou; a sessão
	// local já foi limpa quando esse erro é retornado.
	ErrSessionExpired = errors.New("session expired")

	ErrNotAuthenticated = errors.New("not authenticated")
	ErrEmptySlip        = errors.New("betting slip is empty")
	ErrZeroStake        = errors.New("stake must be greater than zero")
	ErrSubmitInFlight   = errors.New("bet submission already in progress")
)

// Network embrulha err num NetworkError, preservando nil.
func Network(err error) error {
	if err == nil {
		return nil
	}
	return &NetworkError{Err: err}
}
