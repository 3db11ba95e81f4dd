package services

import (
	"context"
	"strconv"
	"strings"

	"knowledge-base-api/auth"
	"knowledge-base-api/identity"
	"knowledge-base-api/logger"
	"knowledge-base-api/metrics"
	"knowledge-base-api/models"
	"knowledge-base-api/repositories"
)

const maxUsernameLength = 50

// SessionCredentials are forwarded to the identity provider when one is
// configured.
type SessionCredentials struct {
	SessionToken string
	Cookie       string
}

type IdentityService interface {
	Sync(ctx context.Context, req models.SyncRequest, creds SessionCredentials) (*models.SyncResponse, error)
}

type identityService struct {
	store      *repositories.Store
	jwtManager *auth.JWTManager
	verifier   identity.Verifier
}

// NewIdentityService builds the sync service. A nil verifier makes Sync
// trust the request body.
func NewIdentityService(store *repositories.Store, jwtManager *auth.JWTManager, verifier identity.Verifier) IdentityService {
	return &identityService{
		store:      store,
		jwtManager: jwtManager,
		verifier:   verifier,
	}
}

func (s *identityService) Sync(ctx context.Context, req models.SyncRequest, creds SessionCredentials) (*models.SyncResponse, error) {
	externalID := strings.TrimSpace(req.ExternalID)
	email := strings.TrimSpace(req.Email)
	username := strings.TrimSpace(req.Username)

	if s.verifier != nil {
		ident, err := s.verifier.Verify(ctx, creds.SessionToken, creds.Cookie)
		if err != nil {
			return nil, storeError("verify session", err, "")
		}
		externalID = ident.ID
		email = ident.Email
		if username == "" {
			username = ident.Username
		}
	}

	if externalID == "" || email == "" {
		return nil, models.Invalid("external_id and email are required")
	}

	var (
		user    *models.User
		outcome models.SyncOutcome
	)
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		var err error
		user, outcome, err = resolveIdentity(ctx, tx, externalID, email, username)
		return err
	})
	if err != nil {
		return nil, err
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		return nil, storeError("sign token", err, "")
	}

	metrics.RecordIdentitySync(string(outcome))
	logger.Log.Infow("identity synced",
		"user_id", user.ID,
		"external_id", externalID,
		"outcome", outcome,
	)

	return &models.SyncResponse{
		Message: "User synced successfully",
		Outcome: outcome,
		Token:   token,
		User:    *user,
	}, nil
}

// resolveIdentity finds the local user for an external identity: by
// external id, then by email (linking it), else by creating a new user.
func resolveIdentity(ctx context.Context, tx *repositories.Store, externalID, email, username string) (*models.User, models.SyncOutcome, error) {
	user, err := tx.Users.GetByExternalID(ctx, externalID)
	if err == nil {
		return user, models.SyncResolved, nil
	}
	if !isNotFound(err) {
		return nil, "", storeError("find user by external id", err, "")
	}

	user, err = tx.Users.GetByEmail(ctx, email)
	if err == nil {
		if user.ExternalID != nil && *user.ExternalID != "" && *user.ExternalID != externalID {
			return nil, "", models.ErrorConflict{Message: "Email is already linked to another identity"}
		}
		user.ExternalID = &externalID
		if err := tx.Users.Update(ctx, user); err != nil {
			return nil, "", storeError("link identity", err, "")
		}
		return user, models.SyncLinked, nil
	}
	if !isNotFound(err) {
		return nil, "", storeError("find user by email", err, "")
	}

	base := username
	if base == "" {
		base = strings.SplitN(email, "@", 2)[0]
	}
	candidate, err := availableUsername(ctx, tx, base)
	if err != nil {
		return nil, "", err
	}

	user = &models.User{
		Username:   candidate,
		Email:      email,
		Password:   models.ExternalAuthPassword,
		ExternalID: &externalID,
		Role:       models.RoleEmployee,
	}
	if err := tx.Users.Create(ctx, user); err != nil {
		return nil, "", storeError("create user", err, "")
	}
	return user, models.SyncCreated, nil
}

// availableUsername returns base, or base suffixed 1, 2, ... until unused.
func availableUsername(ctx context.Context, tx *repositories.Store, base string) (string, error) {
	base = truncateRunes(base, maxUsernameLength)
	if base == "" {
		base = "user"
	}

	candidate := base
	for n := 1; ; n++ {
		exists, err := tx.Users.UsernameExists(ctx, candidate)
		if err != nil {
			return "", storeError("check username", err, "")
		}
		if !exists {
			return candidate, nil
		}
		suffix := strconv.Itoa(n)
		candidate = truncateRunes(base, maxUsernameLength-len(suffix)) + suffix
	}
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
