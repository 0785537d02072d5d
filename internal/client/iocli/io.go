package iocli

//go:generate moq -out io_mock.go . IO

// IO abstracts terminal interaction so CLI commands can be scripted in
// tests. ReadPassword must not echo the input.
type IO interface {
	Println(a ...any)
	Printf(format string, a ...any)
	ReadInput(prompt string) (string, error)
	ReadPassword(prompt string) (string, error)
	Write(p []byte) (n int, err error)
}
