package botsettings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beautycrm/internal/domain"
)

type memRepo struct {
	stored *domain.BotSettings
	saves  int
}

func (r *memRepo) Get(context.Context) (*domain.BotSettings, error) {
	s := domain.BotSettings{ID: 1}
	if r.stored != nil {
		s = *r.stored
	}
	s.Normalize()
	return &s, nil
}

func (r *memRepo) Save(_ context.Context, s *domain.BotSettings) error {
	s.Normalize()
	cp := *s
	r.stored = &cp
	r.saves++
	return nil
}

func intPtr(v int) *int { return &v }

func TestService_Get_Defaults(t *testing.T) {
	svc := NewService(&memRepo{})

	s, err := svc.Get(context.Background())

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultMaxMessageChars, s.MaxMessageChars)
}

func TestService_Get_LegacyValue(t *testing.T) {
	svc := NewService(&memRepo{stored: &domain.BotSettings{MaxMessageLength: 3}})

	s, err := svc.Get(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 300, s.MaxMessageChars)
}

func TestService_Update(t *testing.T) {
	tests := []struct {
		name  string
		start domain.BotSettings
		req   UpdateRequest
		want  int
	}{
		{"chars wins", domain.BotSettings{}, UpdateRequest{MaxMessageChars: intPtr(800), MaxMessageLength: intPtr(2)}, 800},
		{"legacy only", domain.BotSettings{MaxMessageChars: 900}, UpdateRequest{MaxMessageLength: intPtr(4)}, 400},
		{"zero chars falls back to legacy", domain.BotSettings{MaxMessageLength: 6}, UpdateRequest{MaxMessageChars: intPtr(0)}, 600},
		{"both zero gives default", domain.BotSettings{}, UpdateRequest{MaxMessageChars: intPtr(0), MaxMessageLength: intPtr(0)}, 500},
		{"untouched", domain.BotSettings{MaxMessageChars: 700}, UpdateRequest{BotName: new(string)}, 700},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := tt.start
			repo := &memRepo{stored: &start}
			svc := NewService(repo)

			s, err := svc.Update(context.Background(), tt.req)

			require.NoError(t, err)
			assert.Equal(t, tt.want, s.MaxMessageChars)
			assert.Equal(t, tt.want, repo.stored.MaxMessageChars)
		})
	}
}

func TestService_Update_RejectsNegative(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(repo)

	_, err := svc.Update(context.Background(), UpdateRequest{MaxMessageChars: intPtr(-1)})

	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, repo.saves)
}
