package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/librarian/internal/common"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBorrowAndReturn(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u, _ := e.signUp(t, "ann", "ann@example.com")
	b := e.addBook(t, "Dune")
	due := e.clock.Now().Add(14 * 24 * time.Hour)

	loan, err := e.lending.Borrow(ctx, BorrowInput{UserID: u.ID, BookID: b.ID, DueAt: due})
	require.NoError(t, err)
	assert.False(t, loan.Returned)
	assert.True(t, loan.DueAt.Equal(due))
	assert.True(t, loan.BorrowedAt.Equal(e.clock.Now()))

	_, err = e.lending.Borrow(ctx, BorrowInput{UserID: u.ID, BookID: b.ID, DueAt: due})
	assert.ErrorIs(t, err, common.ErrAlreadyBorrowed)

	e.clock.Advance(time.Hour)
	returned, err := e.lending.Return(ctx, u.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, loan.ID, returned.ID)
	assert.True(t, returned.Returned)
	require.NotNil(t, returned.ReturnedAt)
	assert.True(t, returned.ReturnedAt.Equal(e.clock.Now()))

	_, err = e.lending.Return(ctx, u.ID, b.ID)
	assert.ErrorIs(t, err, common.ErrNoActiveLoan)

	again, err := e.lending.Borrow(ctx, BorrowInput{UserID: u.ID, BookID: b.ID, DueAt: due})
	require.NoError(t, err, "the pair can be borrowed again after a return")
	assert.NotEqual(t, loan.ID, again.ID)
}

func TestBorrow_ConcurrentSamePairHasOneWinner(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u, _ := e.signUp(t, "ann", "ann@example.com")
	b := e.addBook(t, "Dune")
	in := BorrowInput{UserID: u.ID, BookID: b.ID, DueAt: e.clock.Now().Add(time.Hour)}

	const n = 16
	errs := make([]error, n)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = e.lending.Borrow(ctx, in)
		}(i)
	}
	close(start)
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, common.ErrAlreadyBorrowed)
	}
	assert.Equal(t, 1, wins)
}

func TestBorrow_Rejections(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u, _ := e.signUp(t, "ann", "ann@example.com")
	gone, _ := e.signUp(t, "bob", "bob@example.com")
	require.NoError(t, e.accounts.SoftDelete(ctx, gone.ID))
	b := e.addBook(t, "Dune")
	due := e.clock.Now().Add(time.Hour)

	tests := []struct {
		name string
		in   BorrowInput
		want error
	}{
		{"malformed user id", BorrowInput{UserID: "u1", BookID: b.ID, DueAt: due}, common.ErrorValidation},
		{"malformed book id", BorrowInput{UserID: u.ID, BookID: "b1", DueAt: due}, common.ErrorValidation},
		{"missing due date", BorrowInput{UserID: u.ID, BookID: b.ID}, common.ErrorValidation},
		{"due date in the past", BorrowInput{UserID: u.ID, BookID: b.ID, DueAt: e.clock.Now().Add(-time.Minute)}, common.ErrorValidation},
		{"unknown user", BorrowInput{UserID: uuid.NewString(), BookID: b.ID, DueAt: due}, common.ErrorNotFound},
		{"soft-deleted user", BorrowInput{UserID: gone.ID, BookID: b.ID, DueAt: due}, common.ErrorNotFound},
		{"unknown book", BorrowInput{UserID: u.ID, BookID: uuid.NewString(), DueAt: due}, common.ErrorNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.lending.Borrow(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestReturn_Validation(t *testing.T) {
	e := newEnv(t)

	_, err := e.lending.Return(context.Background(), "x", uuid.NewString())
	assert.ErrorIs(t, err, common.ErrorValidation)
	_, err = e.lending.Return(context.Background(), uuid.NewString(), uuid.NewString())
	assert.ErrorIs(t, err, common.ErrNoActiveLoan)
}

func TestListings(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ann, _ := e.signUp(t, "ann", "ann@example.com")
	bob, _ := e.signUp(t, "bob", "bob@example.com")
	dune := e.addBook(t, "Dune")
	emma := e.addBook(t, "Emma")
	due := e.clock.Now().Add(time.Hour)

	for _, p := range []struct{ u, b string }{{ann.ID, dune.ID}, {ann.ID, emma.ID}, {bob.ID, dune.ID}} {
		e.clock.Advance(time.Second)
		_, err := e.lending.Borrow(ctx, BorrowInput{UserID: p.u, BookID: p.b, DueAt: due})
		require.NoError(t, err)
	}
	_, err := e.lending.Return(ctx, ann.ID, emma.ID)
	require.NoError(t, err)

	mine, err := e.lending.ListActiveLoansForUser(ctx, ann.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Dune", mine[0].BookTitle)

	holders, err := e.lending.ListActiveHoldersOfBook(ctx, dune.ID)
	require.NoError(t, err)
	require.Len(t, holders, 2)
	assert.Equal(t, "ann", holders[0].UserName)
	assert.Equal(t, "bob@example.com", holders[1].UserEmail)

	history, err := e.lending.ListAllHistory(ctx)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "Emma", history[1].BookTitle)
	assert.True(t, history[1].Returned)

	_, err = e.lending.ListActiveLoansForUser(ctx, "nope")
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestDeleteRecord(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u, _ := e.signUp(t, "ann", "ann@example.com")
	b := e.addBook(t, "Dune")

	loan, err := e.lending.Borrow(ctx, BorrowInput{UserID: u.ID, BookID: b.ID, DueAt: e.clock.Now().Add(time.Hour)})
	require.NoError(t, err)

	require.NoError(t, e.lending.DeleteRecord(ctx, loan.ID))
	assert.ErrorIs(t, e.lending.DeleteRecord(ctx, loan.ID), common.ErrorNotFound)
	assert.ErrorIs(t, e.lending.DeleteRecord(ctx, "bad"), common.ErrorValidation)

	_, err = e.lending.Borrow(ctx, BorrowInput{UserID: u.ID, BookID: b.ID, DueAt: e.clock.Now().Add(time.Hour)})
	assert.NoError(t, err, "deleting the active record frees the pair")
}
