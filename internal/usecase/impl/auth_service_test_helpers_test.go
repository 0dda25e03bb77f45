package impl

import (
	"io"
	"log/slog"
	"testing"

	"credcore/internal/domain/service"
	"credcore/internal/infra/auth"
	"credcore/internal/infra/persistence/memory"
	mockRepo "credcore/internal/mocks/repository"
	mockSvc "credcore/internal/mocks/service"
	"credcore/internal/usecase"
)

// fastArgon2Params keeps the KDF cheap so property loops stay quick.
var fastArgon2Params = auth.Argon2Params{
	Time:       1,
	MemoryKiB:  8,
	Threads:    1,
	KeyLength:  32,
	SaltLength: 16,
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newMemoryAuthService wires the service to a real in-memory store and hasher.
func newMemoryAuthService(t *testing.T) (usecase.AuthUsecase, *memory.CredentialStore) {
	t.Helper()

	store := memory.NewCredentialStore()
	svc := NewAuthService(AuthServiceParams{
		Store:  store,
		Hasher: auth.NewArgon2HasherWithParams(fastArgon2Params, nil),
		Logger: discardLogger(),
	})

	return svc, store
}

// authServiceFixtures holds mocked dependencies for error-path tests.
type authServiceFixtures struct {
	service   usecase.AuthUsecase
	store     *mockRepo.MockCredentialStore
	hasher    *mockSvc.MockPasswordHasher
	publisher *mockSvc.MockEventPublisher
}

func createTestAuthService(t *testing.T) authServiceFixtures {
	store := mockRepo.NewMockCredentialStore(t)
	hasher := mockSvc.NewMockPasswordHasher(t)
	publisher := mockSvc.NewMockEventPublisher(t)

	var eventPublisher service.EventPublisher = publisher

	return authServiceFixtures{
		service: NewAuthService(AuthServiceParams{
			Store:     store,
			Hasher:    hasher,
			Publisher: eventPublisher,
			Logger:    discardLogger(),
		}),
		store:     store,
		hasher:    hasher,
		publisher: publisher,
	}
}
