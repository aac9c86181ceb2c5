// Copyright (c) 2026 Canvio. All rights reserved.
// Author: dev@canvio.app

package identity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

/*
TestClassifyCode verifies that every backend code lands on its taxonomy kind
and that unrecognized codes collapse into KindUnknown.
*/
func TestClassifyCode(t *testing.T) {
	tests := []struct {
		code string
		want Kind
	}{
		{"EMAIL_NOT_FOUND", KindInvalidCredentials},
		{"INVALID_PASSWORD", KindInvalidCredentials},
		{"INVALID_LOGIN_CREDENTIALS", KindInvalidCredentials},
		{"INVALID_EMAIL", KindInvalidEmailFormat},
		{"USER_DISABLED", KindAccountDisabled},
		{"TOO_MANY_ATTEMPTS_TRY_LATER", KindRateLimited},
		{"EMAIL_EXISTS", KindEmailInUse},
		{"ACCOUNT_EXISTS_WITH_DIFFERENT_CREDENTIAL", KindAccountCollision},
		{"SOMETHING_NEW", KindUnknown},
		{"", KindUnknown},
	}

	for _, test := range tests {
		t.Run(test.code, func(t *testing.T) {
			assert.Equal(t, test.want, ClassifyCode(test.code))
		})
	}
}

/*
TestKindMessage verifies that every kind, including the catch-all, yields a
non-empty user-facing message.
*/
func TestKindMessage(t *testing.T) {
	kinds := []Kind{
		KindUnknown, KindInvalidCredentials, KindInvalidEmailFormat,
		KindAccountDisabled, KindRateLimited, KindNetworkFailure,
		KindPopupCancelled, KindPopupBlocked, KindAccountCollision,
		KindEmailInUse,
	}

	for _, kind := range kinds {
		assert.NotEmpty(t, kind.Message(), "kind %s must have a message", kind)
	}
}

/*
TestError_MessagePrecedence verifies that an explicit message overrides the
kind default, and that the default applies otherwise.
*/
func TestError_MessagePrecedence(t *testing.T) {
	withOverride := &Error{Kind: KindInvalidCredentials, Message: "custom text"}
	assert.Equal(t, "custom text", withOverride.Error())

	withDefault := &Error{Kind: KindInvalidCredentials}
	assert.Equal(t, KindInvalidCredentials.Message(), withDefault.Error())
}

/*
TestError_Unwrap verifies the cause chain stays traversable for logging.
*/
func TestError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NetworkError(cause)

	assert.Equal(t, KindNetworkFailure, err.Kind)
	assert.ErrorIs(t, err, cause)
}
