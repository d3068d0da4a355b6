package renewal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertDueDate(t *testing.T) {
	assert.Equal(t, "2025-01-05", ConvertDueDate("5 Jan 2025"))
	assert.Equal(t, "1999-12-31", ConvertDueDate("31 Dec 1999"))
	assert.Equal(t, "2024-02-09", ConvertDueDate("  9 Feb 2024  "))
}

func TestConvertDueDateMalformed(t *testing.T) {
	// 分段数不为3时原样返回
	assert.Equal(t, "Jan 2025", ConvertDueDate("Jan 2025"))
	assert.Equal(t, "", ConvertDueDate(""))
	assert.Equal(t, "5 Jan 2025 extra", ConvertDueDate("5 Jan 2025 extra"))
}

func TestConvertDueDateUnknownMonth(t *testing.T) {
	assert.Equal(t, "2025-00-05", ConvertDueDate("5 Foo 2025"))
}

func TestExtractDueDate(t *testing.T) {
	assert.Equal(t, "2025-01-05", ExtractDueDate("Due date\n5 Jan 2025\nRenew"))
	assert.Equal(t, "", ExtractDueDate("Due date\nno date here"))
}

func TestExtractRemainingDays(t *testing.T) {
	days, ok := ExtractRemainingDays("Your service expires in 7 days.")
	assert.True(t, ok)
	assert.Equal(t, 7, days)

	days, ok = ExtractRemainingDays("service Expires In 3 Days")
	assert.True(t, ok)
	assert.Equal(t, 3, days)

	days, ok = ExtractRemainingDays("expires in 1 day")
	assert.True(t, ok)
	assert.Equal(t, 1, days)
}

func TestExtractRemainingDaysAbsent(t *testing.T) {
	_, ok := ExtractRemainingDays("You can renew your service now.")
	assert.False(t, ok)

	_, ok = ExtractRemainingDays("")
	assert.False(t, ok)
}
