package notify_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chantierplus/internal/mocks"
	"chantierplus/internal/models"
	"chantierplus/internal/notify"
	"chantierplus/internal/render"
)

type fakeOwners struct {
	owners []models.UserProfile
	err    error
}

func (f fakeOwners) Owners(context.Context, uuid.UUID) ([]models.UserProfile, error) {
	return f.owners, f.err
}

func TestResolve(t *testing.T) {
	company := &models.Company{ID: uuid.New(), Name: "BTP"}
	chantier := &models.Chantier{ContactEmail: "client@example.fr"}
	employee := &models.UserProfile{Email: "employee@btp.fr", Role: models.RoleEmployee}
	owners := []models.UserProfile{
		{Email: "owner1@btp.fr", Role: models.RoleOwner},
		{Email: "owner2@btp.fr", Role: models.RoleOwner},
	}

	t.Run("site contact, actor, then owners", func(t *testing.T) {
		got, err := notify.NewResolver(fakeOwners{owners: owners}).Resolve(context.Background(), chantier, employee, company)
		require.NoError(t, err)
		assert.Equal(t, []string{"client@example.fr", "employee@btp.fr", "owner1@btp.fr", "owner2@btp.fr"}, got)
	})

	t.Run("actor who is also an owner appears once", func(t *testing.T) {
		actor := &owners[1]
		got, err := notify.NewResolver(fakeOwners{owners: owners}).Resolve(context.Background(), chantier, actor, company)
		require.NoError(t, err)
		assert.Equal(t, []string{"client@example.fr", "owner2@btp.fr", "owner1@btp.fr"}, got)
	})

	t.Run("no owners still yields contact and actor", func(t *testing.T) {
		got, err := notify.NewResolver(fakeOwners{}).Resolve(context.Background(), chantier, employee, company)
		require.NoError(t, err)
		assert.Equal(t, []string{"client@example.fr", "employee@btp.fr"}, got)
	})

	t.Run("owner lookup failure keeps the base recipients", func(t *testing.T) {
		got, err := notify.NewResolver(fakeOwners{err: errors.New("db down")}).Resolve(context.Background(), chantier, employee, company)
		assert.Error(t, err)
		assert.Equal(t, []string{"client@example.fr", "employee@btp.fr"}, got)
	})
}

func TestUnique(t *testing.T) {
	assert.Equal(t, []string{"a@x.fr", "b@x.fr"}, notify.Unique("a@x.fr", " ", "A@X.fr", "b@x.fr", "a@x.fr"))
	assert.Empty(t, notify.Unique())
}

func TestDispatch(t *testing.T) {
	atts := []notify.Attachment{{Filename: "avenant.pdf", Data: []byte("%PDF-"), ContentType: "application/pdf"}}

	t.Run("one failing recipient does not stop the others", func(t *testing.T) {
		m := mocks.NewMailer(t)
		m.On("Send", mock.Anything, mock.MatchedBy(func(msg notify.Message) bool { return msg.To == "a@x.fr" })).Return(errors.New("550 mailbox unavailable")).Once()
		m.On("Send", mock.Anything, mock.MatchedBy(func(msg notify.Message) bool {
			return msg.To == "b@x.fr" && len(msg.Attachments) == 1 && msg.Subject == "Avenant - Villa"
		})).Return(nil).Once()

		got := notify.NewDispatcher(m).Dispatch(context.Background(), []string{"a@x.fr", "b@x.fr"}, "Avenant - Villa", "<p>hi</p>", atts)
		require.Len(t, got, 2)
		assert.False(t, got[0].OK)
		assert.Contains(t, got[0].Error, "550")
		assert.True(t, got[1].OK)
		assert.Equal(t, 1, notify.Failed(got))
	})

	t.Run("a panicking transport is contained", func(t *testing.T) {
		m := mocks.NewMailer(t)
		m.On("Send", mock.Anything, mock.Anything).Panic("boom").Once()
		m.On("Send", mock.Anything, mock.Anything).Return(nil).Once()

		got := notify.NewDispatcher(m).Dispatch(context.Background(), []string{"a@x.fr", "b@x.fr"}, "s", "b", nil)
		require.Len(t, got, 2)
		assert.False(t, got[0].OK)
		assert.True(t, got[1].OK)
	})

	t.Run("recipients left after the deadline are not sent", func(t *testing.T) {
		m := mocks.NewMailer(t)
		ctx, cancel := context.WithCancel(context.Background())
		m.On("Send", mock.Anything, mock.Anything).Run(func(mock.Arguments) { cancel() }).Return(nil).Once()

		got := notify.NewDispatcher(m).Dispatch(ctx, []string{"a@x.fr", "b@x.fr", "c@x.fr"}, "s", "b", atts)
		require.Len(t, got, 3)
		assert.True(t, got[0].OK)
		assert.False(t, got[1].OK)
		assert.Contains(t, got[1].Error, "deadline")
		assert.False(t, got[2].OK)
		assert.Equal(t, 2, notify.Failed(got))
		m.AssertNumberOfCalls(t, "Send", 1)
	})
}

func TestAvenantEmailHTML(t *testing.T) {
	s := render.Snapshot{
		AvenantID:       uuid.New(),
		CompanyName:     "BTP <Express>",
		ChantierName:    "Villa",
		ChantierAddress: "1 rue A",
		Description:     "Travaux",
		Mode:            models.ModeForfait,
		TotalHT:         decimal.RequireFromString("1500"),
		CreatedAt:       time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC),
	}
	html, err := notify.AvenantEmailHTML(s)
	require.NoError(t, err)
	assert.Contains(t, html, "1500.00")
	assert.Contains(t, html, "02/05/2026")
	assert.Contains(t, html, "BTP &lt;Express&gt;")
	assert.Equal(t, "Avenant - Villa", notify.Subject(s))
}

func TestSMTPConfigRequired(t *testing.T) {
	_, err := notify.NewSMTPMailer(notify.SMTPConfig{})
	assert.Error(t, err)
	_, err = notify.NewSMTPMailer(notify.SMTPConfig{Host: "smtp.example.org"})
	assert.Error(t, err)
	_, err = notify.NewSMTPMailer(notify.SMTPConfig{Host: "smtp.example.org", FromEmail: "noreply@example.org"})
	assert.NoError(t, err)
}
