//go:build unit

package commands_test

import (
	"context"
	"errors"
	"time"

	"skillmarket/internal/domain/booking"
	"skillmarket/internal/domain/escrow"
	"skillmarket/internal/infra"
	"skillmarket/internal/infra/db"
	"skillmarket/internal/usecase/queries"
	"skillmarket/internal/usecase/shared"

	"github.com/google/uuid"
)

var errNoRows = errors.New("no rows in result set")

func notFoundErr(msg string) error {
	return infra.WrapRepoErr(msg, errNoRows, infra.KindNotFound)
}

// fakeWorld is the in-memory database backing the fake unit of work. Within
// snapshots it before the callback and restores the snapshot on error, so
// tests can assert that failed transactions leave no partial writes behind.
type fakeWorld struct {
	wallets  map[uuid.UUID]shared.WalletSnapshot
	bookings map[uuid.UUID]*booking.Booking
	escrows  map[uuid.UUID]*escrow.Transaction // keyed by booking ID
	skills   map[uuid.UUID]*shared.SkillSnapshot

	// advisoryConflict forces the pre-check to report a conflict;
	// advisoryAlwaysClear forces it to miss one, simulating a racing insert
	// that lands between the pre-check and the transaction.
	advisoryConflict    bool
	advisoryAlwaysClear bool
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		wallets:  map[uuid.UUID]shared.WalletSnapshot{},
		bookings: map[uuid.UUID]*booking.Booking{},
		escrows:  map[uuid.UUID]*escrow.Transaction{},
		skills:   map[uuid.UUID]*shared.SkillSnapshot{},
	}
}

func cloneBooking(b *booking.Booking) *booking.Booking {
	var reschedule *booking.RescheduleInfo
	if r := b.Reschedule(); r != nil {
		copied := *r
		reschedule = &copied
	}
	var rejection *string
	if r := b.RejectionReason(); r != nil {
		copied := *r
		rejection = &copied
	}
	return booking.ReconstructBooking(
		b.ID(), b.ProviderID(), b.LearnerID(), b.SkillID(),
		b.PreferredDate(), b.PreferredTime(), b.DurationMinutes(),
		b.Window(), b.SessionCost(), b.Status(),
		reschedule, rejection,
		b.CreatedAt(), b.UpdatedAt(),
	)
}

func cloneEscrow(t *escrow.Transaction) *escrow.Transaction {
	var releasedAt, refundedAt *time.Time
	if r := t.ReleasedAt(); r != nil {
		copied := *r
		releasedAt = &copied
	}
	if r := t.RefundedAt(); r != nil {
		copied := *r
		refundedAt = &copied
	}
	return escrow.ReconstructTransaction(
		t.ID(), t.BookingID(), t.LearnerID(), t.ProviderID(),
		t.Amount(), t.Status(), t.HeldAt(), releasedAt, refundedAt,
	)
}

func (w *fakeWorld) snapshot() *fakeWorld {
	s := newFakeWorld()
	s.advisoryConflict = w.advisoryConflict
	s.advisoryAlwaysClear = w.advisoryAlwaysClear
	for id, wallet := range w.wallets {
		s.wallets[id] = wallet
	}
	for id, b := range w.bookings {
		s.bookings[id] = cloneBooking(b)
	}
	for id, e := range w.escrows {
		s.escrows[id] = cloneEscrow(e)
	}
	for id, sk := range w.skills {
		copied := *sk
		s.skills[id] = &copied
	}
	return s
}

func (w *fakeWorld) restore(s *fakeWorld) {
	w.wallets = s.wallets
	w.bookings = s.bookings
	w.escrows = s.escrows
	w.skills = s.skills
}

func (w *fakeWorld) countOverlapping(providerID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) int64 {
	var count int64
	for _, b := range w.bookings {
		if b.ProviderID() != providerID || !b.Status().BlocksSlot() {
			continue
		}
		if excludeID != nil && b.ID() == *excludeID {
			continue
		}
		if b.Window().Start().Before(end) && b.Window().End().After(start) {
			count++
		}
	}
	return count
}

func emptyWallet(userID uuid.UUID) shared.WalletSnapshot {
	return shared.WalletSnapshot{UserID: userID}
}

type fakeUoW struct {
	world *fakeWorld
}

func (u *fakeUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	before := u.world.snapshot()
	if err := fn(ctx, &fakeTx{world: u.world}); err != nil {
		u.world.restore(before)
		return err
	}
	return nil
}

func (u *fakeUoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	return fn(ctx, nil)
}

func (u *fakeUoW) WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	return fn(ctx, nil)
}

func (u *fakeUoW) CommandReads() shared.CommandReads {
	return &fakeReads{world: u.world}
}

type fakeTx struct {
	world *fakeWorld
}

func (t *fakeTx) Bookings() shared.BookingRepository { return &fakeBookingRepo{world: t.world} }
func (t *fakeTx) Escrows() shared.EscrowRepository   { return &fakeEscrowRepo{world: t.world} }
func (t *fakeTx) Wallets() shared.WalletRepository   { return &fakeWalletRepo{world: t.world} }
func (t *fakeTx) Users() shared.UserRepository       { return &fakeUserRepo{} }
func (t *fakeTx) Reads() shared.CommandReads         { return &fakeReads{world: t.world} }
func (t *fakeTx) DB() db.DBTX                        { return nil }

type fakeReads struct {
	world *fakeWorld
}

func (r *fakeReads) SkillByID(_ context.Context, id uuid.UUID) (*shared.SkillSnapshot, error) {
	skill, ok := r.world.skills[id]
	if !ok {
		return nil, notFoundErr("find skill")
	}
	copied := *skill
	return &copied, nil
}

func (r *fakeReads) HasSlotConflict(_ context.Context, providerID uuid.UUID, window booking.SessionWindow, bufferMinutes int, excludeBookingID *uuid.UUID) (bool, error) {
	if r.world.advisoryConflict {
		return true, nil
	}
	if r.world.advisoryAlwaysClear {
		return false, nil
	}
	expanded := window.WithBuffer(bufferMinutes)
	return r.world.countOverlapping(providerID, expanded.Start(), expanded.End(), excludeBookingID) > 0, nil
}

type fakeBookingRepo struct {
	world *fakeWorld
}

func (r *fakeBookingRepo) Create(_ context.Context, _ db.DBTX, b *booking.Booking) error {
	if _, exists := r.world.bookings[b.ID()]; exists {
		return infra.WrapRepoErr("insert booking", errNoRows, infra.KindDuplicateKey)
	}
	r.world.bookings[b.ID()] = cloneBooking(b)
	return nil
}

func (r *fakeBookingRepo) FindByIDForUpdate(_ context.Context, _ db.DBTX, id uuid.UUID) (*booking.Booking, error) {
	b, ok := r.world.bookings[id]
	if !ok {
		return nil, notFoundErr("find booking for update")
	}
	return cloneBooking(b), nil
}

func (r *fakeBookingRepo) Update(_ context.Context, _ db.DBTX, b *booking.Booking) error {
	if _, ok := r.world.bookings[b.ID()]; !ok {
		return notFoundErr("update booking")
	}
	r.world.bookings[b.ID()] = cloneBooking(b)
	return nil
}

func (r *fakeBookingRepo) CountOverlapping(_ context.Context, _ db.DBTX, providerID uuid.UUID, start, end time.Time, excludeBookingID *uuid.UUID) (int64, error) {
	return r.world.countOverlapping(providerID, start, end, excludeBookingID), nil
}

type fakeEscrowRepo struct {
	world *fakeWorld
}

func (r *fakeEscrowRepo) Create(_ context.Context, _ db.DBTX, t *escrow.Transaction) error {
	if _, exists := r.world.escrows[t.BookingID()]; exists {
		return infra.WrapRepoErr("insert escrow", errNoRows, infra.KindDuplicateKey)
	}
	// escrow_transactions.booking_id references bookings(id)
	if _, exists := r.world.bookings[t.BookingID()]; !exists {
		return infra.WrapRepoErr("insert escrow", errNoRows, infra.KindForeignKeyViolated)
	}
	r.world.escrows[t.BookingID()] = cloneEscrow(t)
	return nil
}

func (r *fakeEscrowRepo) FindByBookingIDForUpdate(_ context.Context, _ db.DBTX, bookingID uuid.UUID) (*escrow.Transaction, error) {
	t, ok := r.world.escrows[bookingID]
	if !ok {
		return nil, notFoundErr("find escrow for update")
	}
	return cloneEscrow(t), nil
}

func (r *fakeEscrowRepo) Update(_ context.Context, _ db.DBTX, t *escrow.Transaction) error {
	if _, ok := r.world.escrows[t.BookingID()]; !ok {
		return notFoundErr("update escrow")
	}
	r.world.escrows[t.BookingID()] = cloneEscrow(t)
	return nil
}

type fakeWalletRepo struct {
	world *fakeWorld
}

func (r *fakeWalletRepo) FindForUpdate(_ context.Context, _ db.DBTX, userID uuid.UUID) (*shared.WalletSnapshot, error) {
	wallet, ok := r.world.wallets[userID]
	if !ok {
		return nil, notFoundErr("find wallet for update")
	}
	return &wallet, nil
}

func (r *fakeWalletRepo) AdjustBalances(_ context.Context, _ db.DBTX, userID uuid.UUID, creditsDelta, heldDelta, earnedDelta int64) error {
	wallet, ok := r.world.wallets[userID]
	if !ok {
		return notFoundErr("adjust balances")
	}
	wallet.Credits += creditsDelta
	wallet.HeldCredits += heldDelta
	wallet.EarnedCredits += earnedDelta
	r.world.wallets[userID] = wallet
	return nil
}

type fakeUserRepo struct{}

func (r *fakeUserRepo) UpdateLastLogin(context.Context, db.DBTX, uuid.UUID) error { return nil }

type notification struct {
	Recipient uuid.UUID
	Topic     string
	Payload   map[string]any
}

type fakeNotifier struct {
	sent []notification
}

func (n *fakeNotifier) Notify(_ context.Context, recipient uuid.UUID, topic string, payload map[string]any) {
	n.sent = append(n.sent, notification{Recipient: recipient, Topic: topic, Payload: payload})
}

func (n *fakeNotifier) topicsFor(recipient uuid.UUID) []string {
	var topics []string
	for _, msg := range n.sent {
		if msg.Recipient == recipient {
			topics = append(topics, msg.Topic)
		}
	}
	return topics
}

// fakeBookingQueries serves the read-after-write lookups straight from the
// fake world; only the fields the command tests assert on are populated.
type fakeBookingQueries struct {
	world *fakeWorld
}

func (q *fakeBookingQueries) viewOf(b *booking.Booking) *queries.BookingView {
	view := &queries.BookingView{
		ID:              b.ID(),
		SkillID:         b.SkillID(),
		ProviderID:      b.ProviderID(),
		LearnerID:       b.LearnerID(),
		PreferredDate:   b.PreferredDate(),
		PreferredTime:   b.PreferredTime(),
		DurationMinutes: b.DurationMinutes(),
		StartAt:         b.Window().Start(),
		EndAt:           b.Window().End(),
		SessionCost:     b.SessionCost().Amount(),
		Status:          b.Status().String(),
		RejectionReason: b.RejectionReason(),
		CreatedAt:       b.CreatedAt(),
		UpdatedAt:       b.UpdatedAt(),
	}
	if r := b.Reschedule(); r != nil {
		view.Reschedule = &queries.RescheduleView{
			NewDate:     r.NewDate,
			NewTime:     r.NewTime,
			Reason:      r.Reason,
			RequestedBy: r.RequestedBy,
			RequestedAt: r.RequestedAt,
		}
	}
	return view
}

func (q *fakeBookingQueries) GetByID(ctx context.Context, actor uuid.UUID, id uuid.UUID) (*queries.BookingView, error) {
	view, err := q.GetByIDSystem(ctx, id)
	if err != nil {
		return nil, err
	}
	if view.ProviderID != actor && view.LearnerID != actor {
		return nil, notFoundErr("find booking")
	}
	return view, nil
}

func (q *fakeBookingQueries) GetByIDSystem(_ context.Context, id uuid.UUID) (*queries.BookingView, error) {
	b, ok := q.world.bookings[id]
	if !ok {
		return nil, notFoundErr("find booking")
	}
	return q.viewOf(b), nil
}

func (q *fakeBookingQueries) ListByUser(_ context.Context, userID uuid.UUID, _ int) ([]*queries.BookingListItem, error) {
	var items []*queries.BookingListItem
	for _, b := range q.world.bookings {
		if b.ProviderID() != userID && b.LearnerID() != userID {
			continue
		}
		view := q.viewOf(b)
		items = append(items, &queries.BookingListItem{
			ID:          view.ID,
			SkillID:     view.SkillID,
			ProviderID:  view.ProviderID,
			LearnerID:   view.LearnerID,
			StartAt:     view.StartAt,
			EndAt:       view.EndAt,
			SessionCost: view.SessionCost,
			Status:      view.Status,
			CreatedAt:   view.CreatedAt,
		})
	}
	return items, nil
}
