package errors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	bizerr "admin-gateway/pkg/common/errors"
)

func TestValidationErrorMatchesByKind(t *testing.T) {
	err := bizerr.NewAttemptsRemaining(3)

	assert.True(t, errors.Is(err, bizerr.ErrBadCredentials))
	assert.False(t, errors.Is(err, bizerr.ErrAccountLocked))
	assert.Equal(t, "wrong credentials; 3 attempts remain", err.Error())
	assert.Equal(t, 3, err.Remaining)

	wrapped := fmt.Errorf("login: %w", bizerr.ErrCaptchaExpired)
	assert.True(t, errors.Is(wrapped, bizerr.ErrCaptchaExpired))
	assert.True(t, bizerr.IsValidation(wrapped))
	assert.False(t, bizerr.IsValidation(errors.New("boom")))
}

func TestPublicKeepsCause(t *testing.T) {
	herr := bizerr.Public(bizerr.ErrAccountLocked, "alice")
	assert.Equal(t, bizerr.ErrAccountLocked.Error(), herr.Error())
	assert.True(t, errors.Is(herr.Err, bizerr.ErrAccountLocked))
}

func TestWrapGormError(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"not found", gorm.ErrRecordNotFound, bizerr.ErrRecordNotFound},
		{"duplicated key", gorm.ErrDuplicatedKey, bizerr.ErrDuplicateEntry},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062, Message: "dup"}, bizerr.ErrDuplicateEntry},
		{"mysql missing table", &mysql.MySQLError{Number: 1146, Message: "no table"}, bizerr.ErrDatabaseInternal},
		{"other", errors.New("conn reset"), bizerr.ErrDatabaseInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := bizerr.WrapGormError(tc.in)
			if tc.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tc.want)
		})
	}
}

func TestIsDuplicateError(t *testing.T) {
	assert.True(t, bizerr.IsDuplicateError(&mysql.MySQLError{Number: 1062}))
	assert.True(t, bizerr.IsDuplicateError(gorm.ErrDuplicatedKey))
	assert.False(t, bizerr.IsDuplicateError(gorm.ErrRecordNotFound))
}
