package verification

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	domainerrors "github.com/Akash604-crypto/telegram-payment-bot-api/internal/errors"
	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/models"
	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/repositories"
	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/services/dispatch"
	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/services/provider"
	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/services/timeout"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testAdminID int64 = 42

// memRepo reproduces the store's compare-and-swap semantics under a
// mutex, so the race tests exercise the same arbitration as Postgres.
type memRepo struct {
	mu       sync.Mutex
	seq      int
	payments map[string]*models.Payment
	order    map[string]int
}

var _ repositories.PaymentRepository = (*memRepo)(nil)

func newMemRepo() *memRepo {
	return &memRepo{
		payments: make(map[string]*models.Payment),
		order:    make(map[string]int),
	}
}

func (r *memRepo) Create(_ context.Context, p *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	cp := *p
	r.seq++
	r.payments[p.ID] = &cp
	r.order[p.ID] = r.seq
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memRepo) GetByProviderRef(_ context.Context, ref string) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.ProviderRef != nil && *p.ProviderRef == ref {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memRepo) LatestPendingManual(_ context.Context, buyerID int64) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *models.Payment
	for _, p := range r.payments {
		if p.BuyerID != buyerID || p.Status != models.StatusPending || !models.ManualMethod(p.Method) {
			continue
		}
		if latest == nil || r.order[p.ID] > r.order[latest.ID] {
			latest = p
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (r *memRepo) TransitionStatus(_ context.Context, id string, from []string, to string, set map[string]interface{}) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return false, nil
	}
	matched := false
	for _, s := range from {
		if p.Status == s {
			matched = true
			break
		}
	}
	if !matched {
		return false, nil
	}
	p.Status = to
	if ref, ok := set["proof_ref"].(string); ok {
		p.ProofRef = ref
	}
	return true, nil
}

func (r *memRepo) MarkDelivered(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok || p.Status != models.StatusVerified || p.Delivered {
		return false, nil
	}
	p.Delivered = true
	return true, nil
}

func (r *memRepo) SetPromptMessage(_ context.Context, id, msgID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.payments[id]; ok {
		p.PromptMsgID = msgID
	}
	return nil
}

func (r *memRepo) ListByStatus(_ context.Context, status string, _ int) ([]models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Payment
	for _, p := range r.payments {
		if status == "" || p.Status == status {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memRepo) ListBuyers(_ context.Context) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[int64]bool{}
	var out []int64
	for _, p := range r.payments {
		if !seen[p.BuyerID] {
			seen[p.BuyerID] = true
			out = append(out, p.BuyerID)
		}
	}
	return out, nil
}

func (r *memRepo) SumVerified(_ context.Context) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total float64
	for _, p := range r.payments {
		if p.Status == models.StatusVerified {
			total += p.Amount
		}
	}
	return total, nil
}

func (r *memRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[string]int64{}
	for _, p := range r.payments {
		counts[p.Status]++
	}
	return counts, nil
}

func (r *memRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.payments)
}

type memSettings struct {
	mu     sync.Mutex
	prices models.Prices
	links  models.Links
	info   models.PaymentInfo
}

var _ repositories.SettingsRepository = (*memSettings)(nil)

func newMemSettings() *memSettings {
	return &memSettings{
		prices: models.Prices{
			models.BundleVIP:  {UPI: 499, Crypto: 6, Remitly: 499},
			models.BundleDark: {UPI: 1999, Crypto: 24, Remitly: 1999},
			models.BundleBoth: {UPI: 1749, Crypto: 20, Remitly: 1749},
		},
		links: models.Links{},
		info: models.PaymentInfo{
			models.MethodCrypto:  "Address: 0x0 | Network: BEP20",
			models.MethodRemitly: "Recipient: test",
		},
	}
}

func (s *memSettings) Prices(context.Context) (models.Prices, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prices, nil
}

func (s *memSettings) SavePrices(_ context.Context, p models.Prices) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices = p
	return nil
}

func (s *memSettings) Links(context.Context) (models.Links, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	links := models.Links{}
	for k, v := range s.links {
		links[k] = v
	}
	return links, nil
}

func (s *memSettings) SaveLinks(_ context.Context, l models.Links) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links = l
	return nil
}

func (s *memSettings) PaymentInfo(context.Context) (models.PaymentInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info, nil
}

func (s *memSettings) SavePaymentInfo(_ context.Context, i models.PaymentInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.info = i
	return nil
}

func (s *memSettings) setLink(bundle, link string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links[bundle] = link
}

type sentMessage struct {
	To   int64
	Text string
}

type recNotifier struct {
	mu      sync.Mutex
	next    int
	sent    []sentMessage
	deleted []string
}

func (n *recNotifier) Send(_ context.Context, to int64, text string) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.next++
	n.sent = append(n.sent, sentMessage{To: to, Text: text})
	return "msg-" + strconv.Itoa(n.next), nil
}

func (n *recNotifier) SendPhoto(ctx context.Context, to int64, caption string, _ []byte) (string, error) {
	return n.Send(ctx, to, caption)
}

func (n *recNotifier) Edit(context.Context, int64, string, string) error {
	return nil
}

func (n *recNotifier) Delete(_ context.Context, _ int64, msgID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.deleted = append(n.deleted, msgID)
	return nil
}

func (n *recNotifier) messagesTo(to int64) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, m := range n.sent {
		if m.To == to {
			out = append(out, m.Text)
		}
	}
	return out
}

func (n *recNotifier) countContaining(to int64, substr string) int {
	count := 0
	for _, text := range n.messagesTo(to) {
		if strings.Contains(text, substr) {
			count++
		}
	}
	return count
}

type fakeProvider struct {
	mu   sync.Mutex
	next int
	err  error
}

func (p *fakeProvider) CreateQRCharge(context.Context, float64, int64, string) (*provider.QRCharge, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	p.next++
	id := "qr_" + strconv.Itoa(p.next)
	return &provider.QRCharge{ID: id, PayloadURL: "upi://pay?ref=" + id}, nil
}

type fakeTimer struct {
	mu        sync.Mutex
	started   map[string]time.Duration
	cancelled []string
}

func newFakeTimer() *fakeTimer {
	return &fakeTimer{started: make(map[string]time.Duration)}
}

func (t *fakeTimer) Start(id string, d time.Duration, _ timeout.TickFunc) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.started[id] = d
	return nil
}

func (t *fakeTimer) Cancel(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelled = append(t.cancelled, id)
}

func (t *fakeTimer) cancelCount(id string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	count := 0
	for _, c := range t.cancelled {
		if c == id {
			count++
		}
	}
	return count
}

type fixture struct {
	repo     *memRepo
	settings *memSettings
	provider *fakeProvider
	timer    *fakeTimer
	notifier *recNotifier
	svc      Service
}

func newFixture() *fixture {
	f := &fixture{
		repo:     newMemRepo(),
		settings: newMemSettings(),
		provider: &fakeProvider{},
		timer:    newFakeTimer(),
		notifier: &recNotifier{},
	}
	dispatcher := dispatch.NewService(f.repo, f.settings, f.notifier)
	f.svc = NewService(Config{
		AdminID:       testAdminID,
		UPITimeout:    10 * time.Minute,
		ManualTimeout: 30 * time.Minute,
	}, f.repo, f.settings, f.provider, dispatcher, f.timer, f.notifier)
	return f
}

func TestCreatePayment(t *testing.T) {
	ctx := context.Background()

	t.Run("automated payment gets a provider ref and short countdown", func(t *testing.T) {
		f := newFixture()
		result, err := f.svc.CreatePayment(ctx, 100, models.BundleVIP, models.MethodUPI)
		require.NoError(t, err)

		require.NotNil(t, result.Payment.ProviderRef)
		assert.Equal(t, models.StatusPending, result.Payment.Status)
		assert.Equal(t, float64(499), result.Payment.Amount)
		assert.NotEmpty(t, result.QRPayload)
		assert.Equal(t, 10*time.Minute, f.timer.started[result.Payment.ID])
	})

	t.Run("manual payment gets instructions and long countdown", func(t *testing.T) {
		f := newFixture()
		result, err := f.svc.CreatePayment(ctx, 100, models.BundleDark, models.MethodCrypto)
		require.NoError(t, err)

		assert.Nil(t, result.Payment.ProviderRef)
		assert.Contains(t, result.Instructions, "BEP20")
		assert.Equal(t, 30*time.Minute, f.timer.started[result.Payment.ID])
	})

	t.Run("provider failure aborts before anything is persisted", func(t *testing.T) {
		f := newFixture()
		f.provider.err = errors.New("upstream down")

		_, err := f.svc.CreatePayment(ctx, 100, models.BundleVIP, models.MethodUPI)
		require.Error(t, err)
		assert.ErrorIs(t, err, domainerrors.ErrProviderUnavailable)
		assert.Equal(t, 0, f.repo.count())
		assert.Empty(t, f.timer.started)
	})

	t.Run("unknown bundle and method are rejected", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.CreatePayment(ctx, 100, "platinum", models.MethodUPI)
		assert.ErrorIs(t, err, domainerrors.ErrUnknownBundle)

		_, err = f.svc.CreatePayment(ctx, 100, models.BundleVIP, "cheque")
		assert.ErrorIs(t, err, domainerrors.ErrUnknownMethod)
	})
}

func TestProviderCredit(t *testing.T) {
	ctx := context.Background()

	t.Run("credit event verifies and delivers exactly once", func(t *testing.T) {
		f := newFixture()
		f.settings.setLink(models.BundleVIP, "https://t.me/+vip")

		result, err := f.svc.CreatePayment(ctx, 100, models.BundleVIP, models.MethodUPI)
		require.NoError(t, err)
		ref := *result.Payment.ProviderRef

		outcome, err := f.svc.HandleProviderCredit(ctx, ref)
		require.NoError(t, err)
		assert.Equal(t, OutcomeApplied, outcome)

		p, err := f.repo.GetByID(ctx, result.Payment.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusVerified, p.Status)
		assert.True(t, p.Delivered)
		assert.Equal(t, 1, f.timer.cancelCount(p.ID))
		assert.Equal(t, 1, f.notifier.countContaining(100, "Access Granted"))

		// Webhooks redeliver; the replay must be a no-op.
		outcome, err = f.svc.HandleProviderCredit(ctx, ref)
		require.NoError(t, err)
		assert.Equal(t, OutcomeConflict, outcome)
		assert.Equal(t, 1, f.notifier.countContaining(100, "Access Granted"))
	})

	t.Run("unknown ref is ignored, not errored", func(t *testing.T) {
		f := newFixture()
		outcome, err := f.svc.HandleProviderCredit(ctx, "qr_unknown")
		require.NoError(t, err)
		assert.Equal(t, OutcomeIgnored, outcome)
	})
}

func TestManualReviewFlow(t *testing.T) {
	ctx := context.Background()

	t.Run("proof moves the latest pending record to review", func(t *testing.T) {
		f := newFixture()
		result, err := f.svc.CreatePayment(ctx, 200, models.BundleDark, models.MethodCrypto)
		require.NoError(t, err)

		p, outcome, err := f.svc.AttachProof(ctx, 200, "blob-1")
		require.NoError(t, err)
		assert.Equal(t, OutcomeApplied, outcome)
		assert.Equal(t, result.Payment.ID, p.ID)

		stored, err := f.repo.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusReview, stored.Status)
		assert.Equal(t, "blob-1", stored.ProofRef)
		// Review is still subject to timeout.
		assert.Equal(t, 0, f.timer.cancelCount(p.ID))
		// Admin gets the approve/decline prompt.
		assert.Equal(t, 1, f.notifier.countContaining(testAdminID, "Proof uploaded"))
	})

	t.Run("decline from review notifies and never dispatches", func(t *testing.T) {
		f := newFixture()
		f.settings.setLink(models.BundleDark, "https://t.me/+dark")
		result, err := f.svc.CreatePayment(ctx, 200, models.BundleDark, models.MethodCrypto)
		require.NoError(t, err)
		_, _, err = f.svc.AttachProof(ctx, 200, "blob-1")
		require.NoError(t, err)

		outcome, err := f.svc.Decline(ctx, testAdminID, result.Payment.ID)
		require.NoError(t, err)
		assert.Equal(t, OutcomeApplied, outcome)

		stored, err := f.repo.GetByID(ctx, result.Payment.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusDeclined, stored.Status)
		assert.False(t, stored.Delivered)
		assert.Equal(t, 0, f.notifier.countContaining(200, "Access Granted"))
		assert.Equal(t, 1, f.notifier.countContaining(200, "declined"))
		assert.Equal(t, 1, f.timer.cancelCount(result.Payment.ID))
	})

	t.Run("approve is only valid from review", func(t *testing.T) {
		f := newFixture()
		result, err := f.svc.CreatePayment(ctx, 200, models.BundleDark, models.MethodCrypto)
		require.NoError(t, err)

		outcome, err := f.svc.Approve(ctx, testAdminID, result.Payment.ID)
		require.NoError(t, err)
		assert.Equal(t, OutcomeConflict, outcome)

		stored, err := f.repo.GetByID(ctx, result.Payment.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, stored.Status)
	})

	t.Run("approve from review verifies and delivers", func(t *testing.T) {
		f := newFixture()
		f.settings.setLink(models.BundleDark, "https://t.me/+dark")
		result, err := f.svc.CreatePayment(ctx, 200, models.BundleDark, models.MethodCrypto)
		require.NoError(t, err)
		_, _, err = f.svc.AttachProof(ctx, 200, "blob-1")
		require.NoError(t, err)

		outcome, err := f.svc.Approve(ctx, testAdminID, result.Payment.ID)
		require.NoError(t, err)
		assert.Equal(t, OutcomeApplied, outcome)

		stored, err := f.repo.GetByID(ctx, result.Payment.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusVerified, stored.Status)
		assert.True(t, stored.Delivered)
		assert.Equal(t, 1, f.notifier.countContaining(200, "Access Granted"))
	})

	t.Run("unauthorized actor is rejected and the record untouched", func(t *testing.T) {
		f := newFixture()
		result, err := f.svc.CreatePayment(ctx, 200, models.BundleDark, models.MethodCrypto)
		require.NoError(t, err)
		_, _, err = f.svc.AttachProof(ctx, 200, "blob-1")
		require.NoError(t, err)

		_, err = f.svc.Approve(ctx, 999, result.Payment.ID)
		assert.ErrorIs(t, err, domainerrors.ErrNotAdmin)
		_, err = f.svc.Decline(ctx, 999, result.Payment.ID)
		assert.ErrorIs(t, err, domainerrors.ErrNotAdmin)

		stored, err := f.repo.GetByID(ctx, result.Payment.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusReview, stored.Status)
	})
}

func TestExpiry(t *testing.T) {
	ctx := context.Background()

	t.Run("expiry is terminal and late proof is ignored", func(t *testing.T) {
		f := newFixture()
		result, err := f.svc.CreatePayment(ctx, 300, models.BundleVIP, models.MethodRemitly)
		require.NoError(t, err)

		outcome, err := f.svc.Expire(ctx, result.Payment.ID)
		require.NoError(t, err)
		assert.Equal(t, OutcomeApplied, outcome)
		assert.Equal(t, 1, f.notifier.countContaining(300, "expired"))

		// A proof upload after the deadline must not attach.
		_, outcome, err = f.svc.AttachProof(ctx, 300, "blob-late")
		require.NoError(t, err)
		assert.Equal(t, OutcomeIgnored, outcome)

		stored, err := f.repo.GetByID(ctx, result.Payment.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusExpired, stored.Status)
		assert.Empty(t, stored.ProofRef)
	})

	t.Run("expiry withdraws the outstanding prompt", func(t *testing.T) {
		f := newFixture()
		result, err := f.svc.CreatePayment(ctx, 300, models.BundleVIP, models.MethodUPI)
		require.NoError(t, err)
		require.NoError(t, f.svc.SetPrompt(ctx, result.Payment.ID, "prompt-7"))

		_, err = f.svc.Expire(ctx, result.Payment.ID)
		require.NoError(t, err)
		assert.Contains(t, f.notifier.deleted, "prompt-7")
	})

	t.Run("expire replays and terminal records are no-ops", func(t *testing.T) {
		f := newFixture()
		f.settings.setLink(models.BundleVIP, "https://t.me/+vip")
		result, err := f.svc.CreatePayment(ctx, 300, models.BundleVIP, models.MethodUPI)
		require.NoError(t, err)

		_, err = f.svc.HandleProviderCredit(ctx, *result.Payment.ProviderRef)
		require.NoError(t, err)

		outcome, err := f.svc.Expire(ctx, result.Payment.ID)
		require.NoError(t, err)
		assert.Equal(t, OutcomeConflict, outcome)

		stored, err := f.repo.GetByID(ctx, result.Payment.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusVerified, stored.Status)
	})
}

func TestTriggerRace(t *testing.T) {
	ctx := context.Background()

	// All interleavings of the three trigger types must commit exactly
	// one transition out of pending and dispatch at most once.
	for i := 0; i < 20; i++ {
		f := newFixture()
		f.settings.setLink(models.BundleVIP, "https://t.me/+vip")
		result, err := f.svc.CreatePayment(ctx, 400, models.BundleVIP, models.MethodUPI)
		require.NoError(t, err)
		ref := *result.Payment.ProviderRef
		id := result.Payment.ID

		var applied int64
		var mu sync.Mutex
		record := func(outcome Outcome) {
			if outcome == OutcomeApplied {
				mu.Lock()
				applied++
				mu.Unlock()
			}
		}

		var wg sync.WaitGroup
		for j := 0; j < 4; j++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				outcome, _ := f.svc.HandleProviderCredit(ctx, ref)
				record(outcome)
			}()
			go func() {
				defer wg.Done()
				outcome, _ := f.svc.Expire(ctx, id)
				record(outcome)
			}()
		}
		wg.Wait()

		assert.EqualValues(t, 1, applied, "exactly one trigger must win")

		stored, err := f.repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.True(t, stored.Terminal())

		grants := f.notifier.countContaining(400, "Access Granted")
		if stored.Status == models.StatusVerified {
			assert.Equal(t, 1, grants)
			assert.True(t, stored.Delivered)
		} else {
			assert.Equal(t, models.StatusExpired, stored.Status)
			assert.Equal(t, 0, grants)
			assert.False(t, stored.Delivered)
		}
	}
}

func TestCompositeBundle(t *testing.T) {
	ctx := context.Background()

	t.Run("partial configuration falls back and stays retryable", func(t *testing.T) {
		f := newFixture()
		f.settings.setLink(models.BundleVIP, "https://t.me/+vip")
		// dark link intentionally unset

		result, err := f.svc.CreatePayment(ctx, 500, models.BundleBoth, models.MethodUPI)
		require.NoError(t, err)

		outcome, err := f.svc.HandleProviderCredit(ctx, *result.Payment.ProviderRef)
		require.NoError(t, err)
		assert.Equal(t, OutcomeApplied, outcome)

		stored, err := f.repo.GetByID(ctx, result.Payment.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusVerified, stored.Status)
		assert.False(t, stored.Delivered)
		assert.Equal(t, 0, f.notifier.countContaining(500, "Access Granted"))
		assert.Equal(t, 1, f.notifier.countContaining(500, "contact the admin"))

		// Admin fixes the link and retries delivery.
		f.settings.setLink(models.BundleDark, "https://t.me/+dark")
		outcome, err = f.svc.Redispatch(ctx, testAdminID, result.Payment.ID)
		require.NoError(t, err)
		assert.Equal(t, OutcomeApplied, outcome)

		stored, err = f.repo.GetByID(ctx, result.Payment.ID)
		require.NoError(t, err)
		assert.True(t, stored.Delivered)

		grants := f.notifier.messagesTo(500)
		last := grants[len(grants)-1]
		assert.Contains(t, last, "https://t.me/+vip")
		assert.Contains(t, last, "https://t.me/+dark")
	})

	t.Run("redispatch requires a verified record", func(t *testing.T) {
		f := newFixture()
		result, err := f.svc.CreatePayment(ctx, 500, models.BundleVIP, models.MethodUPI)
		require.NoError(t, err)

		_, err = f.svc.Redispatch(ctx, testAdminID, result.Payment.ID)
		assert.ErrorIs(t, err, domainerrors.ErrNotVerified)
	})
}

func TestDeliveredImpliesVerified(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.settings.setLink(models.BundleVIP, "https://t.me/+vip")
	f.settings.setLink(models.BundleDark, "https://t.me/+dark")

	// Drive a mix of flows, then check the invariant over every record.
	upi, err := f.svc.CreatePayment(ctx, 600, models.BundleVIP, models.MethodUPI)
	require.NoError(t, err)
	_, err = f.svc.HandleProviderCredit(ctx, *upi.Payment.ProviderRef)
	require.NoError(t, err)

	manual, err := f.svc.CreatePayment(ctx, 601, models.BundleDark, models.MethodCrypto)
	require.NoError(t, err)
	_, _, err = f.svc.AttachProof(ctx, 601, "blob")
	require.NoError(t, err)
	_, err = f.svc.Decline(ctx, testAdminID, manual.Payment.ID)
	require.NoError(t, err)

	expired, err := f.svc.CreatePayment(ctx, 602, models.BundleVIP, models.MethodRemitly)
	require.NoError(t, err)
	_, err = f.svc.Expire(ctx, expired.Payment.ID)
	require.NoError(t, err)

	all, err := f.repo.ListByStatus(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for _, p := range all {
		if p.Delivered {
			assert.Equal(t, models.StatusVerified, p.Status)
		}
	}
}
