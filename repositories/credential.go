//go:generate go run go.uber.org/mock/mockgen -source=credential.go -destination=../mocks/mock_credential_repository.go -package=mocks
package repositories

// ICredentialRepository persists the whole credential table at once. Save
// replaces everything previously stored.
type ICredentialRepository interface {
	Load() (map[string]string, error)
	Save(users map[string]string) error
}
