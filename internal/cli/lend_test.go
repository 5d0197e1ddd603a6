package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/libcat/internal/lending"
)

func TestBorrowThenReturn(t *testing.T) {
	ws := newWorkspace(t, "B1,Dune,True\nB2,Emma,True\n", "U1,Alice\n")

	out, _, err := ws.run(t, "", "borrow", "u1", " b1 ")
	require.NoError(t, err)
	assert.Equal(t, "Book 'Dune' successfully borrowed by Alice\n", out)

	books, users := ws.read(t)
	assert.Equal(t, "B1,Dune,False\nB2,Emma,True\n", books)
	assert.Equal(t, "U1,Alice,B1\n", users)

	out, _, err = ws.run(t, "", "return", "U1", "B1")
	require.NoError(t, err)
	assert.Equal(t, "Book 'Dune' returned by Alice\n", out)

	books, users = ws.read(t)
	assert.Equal(t, "B1,Dune,True\nB2,Emma,True\n", books)
	assert.Equal(t, "U1,Alice\n", users)
}

func TestBorrow_Refused(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantOut string
	}{
		{"unknown user", []string{"borrow", "U9", "B1"}, "Error [InvalidUser]: Invalid user ID\n"},
		{"unknown book", []string{"borrow", "U1", "B9"}, "Error [InvalidBook]: Invalid book ID\n"},
		{"already out", []string{"borrow", "U2", "B2"}, "Error [AlreadyBorrowed]: Book is already borrowed\n"},
		{"not the borrower", []string{"return", "U2", "B1"}, "Error [NotBorrowedByUser]: User hasn't borrowed this book\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := newWorkspace(t, "B1,Dune,True\nB2,Emma,False\n", "U1,Alice,B2\nU2,Bob\n")
			beforeBooks, beforeUsers := ws.read(t)

			out, _, err := ws.run(t, "", tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.True(t, IsReported(err))
			assert.Equal(t, tt.wantOut, out)

			afterBooks, afterUsers := ws.read(t)
			assert.Equal(t, beforeBooks, afterBooks)
			assert.Equal(t, beforeUsers, afterUsers)
		})
	}
}

func TestBorrow_ErrorMatchesSentinel(t *testing.T) {
	ws := newWorkspace(t, "B1,Dune,False\n", "U1,Alice,B1\n")

	_, _, err := ws.run(t, "", "borrow", "U1", "B1")
	require.Error(t, err)
	assert.ErrorIs(t, err, lending.ErrAlreadyBorrowed)
}

func TestBorrow_JSON(t *testing.T) {
	ws := newWorkspace(t, "B1,Dune,True\n", "U1,Alice\n")

	out, _, err := ws.run(t, "", "borrow", "U1", "B1", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Action   string `json:"action"`
			UserID   string `json:"user_id"`
			UserName string `json:"user_name"`
			BookID   string `json:"book_id"`
			Title    string `json:"title"`
			Message  string `json:"message"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "borrow", resp.Data.Action)
	assert.Equal(t, "Alice", resp.Data.UserName)
	assert.Equal(t, "Dune", resp.Data.Title)
	assert.Equal(t, "Book 'Dune' successfully borrowed by Alice", resp.Data.Message)
}

func TestReturn_JSONError(t *testing.T) {
	ws := newWorkspace(t, "B1,Dune,True\n", "U1,Alice,B1\n")

	out, _, err := ws.run(t, "", "return", "U1", "B1", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "InconsistentState", resp.Error.Code)
	assert.Equal(t, "Book is already marked as available", resp.Error.Message)
}
