package callback

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"mdb/pkg/models"
)

type fakeSession struct {
	installErr  error
	user        *models.User
	noCookie    bool
	installed   []string
	currentUser int
	callbacks   int
}

func (f *fakeSession) InstallToken(token string) error {
	if f.installErr != nil {
		return f.installErr
	}
	f.installed = append(f.installed, token)
	return nil
}

func (f *fakeSession) CurrentUser(context.Context) *models.User {
	f.currentUser++
	return f.user
}

func (f *fakeSession) HandleAuthCallback(context.Context) (*models.User, bool) {
	f.callbacks++
	if f.noCookie {
		return nil, false
	}
	return f.user, true
}

type recordingNavigator struct {
	codes []string
}

func (n *recordingNavigator) NavigateHome(errorCode string) {
	n.codes = append(n.codes, errorCode)
}

func TestHandler_Handle(t *testing.T) {
	alice := &models.User{ID: 1, Username: "alice"}

	tests := []struct {
		name       string
		params     Params
		cookieMode bool
		session    *fakeSession

		wantCode      string
		wantInstalled []string
		wantFetches   int
		wantCallbacks int
		wantUser      *models.User
	}{
		{
			name:     "provider error wins over token",
			params:   Params{Token: "abc123", Error: "access_denied"},
			session:  &fakeSession{user: alice},
			wantCode: ErrorAuthFailed,
		},
		{
			name:          "token installed and user fetched",
			params:        Params{Token: "abc123"},
			session:       &fakeSession{user: alice},
			wantInstalled: []string{"abc123"},
			wantFetches:   1,
			wantUser:      alice,
		},
		{
			name:          "token installed, fetch fails, still home",
			params:        Params{Token: "abc123"},
			session:       &fakeSession{},
			wantInstalled: []string{"abc123"},
			wantFetches:   1,
		},
		{
			name:     "install failure",
			params:   Params{Token: "abc123"},
			session:  &fakeSession{installErr: errors.New("disk full")},
			wantCode: ErrorAuthFailed,
		},
		{
			name:          "cookie variant re-reads the store",
			params:        Params{},
			cookieMode:    true,
			session:       &fakeSession{user: alice},
			wantCallbacks: 1,
			wantUser:      alice,
		},
		{
			name:          "cookie variant without a cookie",
			params:        Params{},
			cookieMode:    true,
			session:       &fakeSession{noCookie: true},
			wantCode:      ErrorNoToken,
			wantCallbacks: 1,
		},
		{
			name:     "nothing received",
			params:   Params{},
			session:  &fakeSession{},
			wantCode: ErrorNoToken,
		},
		{
			name:     "blank token",
			params:   Params{Token: "   "},
			session:  &fakeSession{},
			wantCode: ErrorNoToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nav := &recordingNavigator{}
			h := NewHandler(tt.session, tt.cookieMode)

			outcome := h.Handle(context.Background(), tt.params, nav)

			assert.Equal(t, []string{tt.wantCode}, nav.codes, "navigates home exactly once")
			assert.Equal(t, tt.wantCode, outcome.ErrorCode)
			assert.Equal(t, tt.wantCode == "", outcome.Succeeded())
			assert.Equal(t, tt.wantInstalled, tt.session.installed)
			assert.Equal(t, tt.wantFetches, tt.session.currentUser)
			assert.Equal(t, tt.wantCallbacks, tt.session.callbacks)
			assert.Equal(t, tt.wantUser, outcome.User)
		})
	}
}

func TestHandler_ProviderErrorKept(t *testing.T) {
	nav := &recordingNavigator{}
	outcome := NewHandler(&fakeSession{}, false).Handle(context.Background(), Params{Error: "access_denied"}, nav)
	assert.Equal(t, "access_denied", outcome.ProviderError)
}
