// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package color

import (
	"testing"

	"github.com/prashantv/gostub"
	"github.com/stretchr/testify/assert"
)

func TestColorizeDisabled(t *testing.T) {
	defer gostub.Stub(&enabled, false).Reset()

	assert.Equal(t, "plain", Colorize("plain", FgRed))
}

func TestColorizeEnabled(t *testing.T) {
	defer gostub.Stub(&enabled, true).Reset()

	assert.Equal(t, "\033[31mred\033[0m", Colorize("red", FgRed))
	assert.Equal(t, "\033[31;97mloud\033[0m", Colorize("loud", FgRed, FgHiWhite))
}
