package renewal

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// dueDatePattern 站点展示的到期时间格式,例如 "5 Jan 2025"
var dueDatePattern = regexp.MustCompile(`\d{1,2}\s+(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+\d{4}`)

// remainingDaysPattern 限制弹窗中的剩余天数说明
var remainingDaysPattern = regexp.MustCompile(`(?i)expires in (\d+) days?`)

var monthTable = map[string]string{
	"Jan": "01", "Feb": "02", "Mar": "03", "Apr": "04",
	"May": "05", "Jun": "06", "Jul": "07", "Aug": "08",
	"Sep": "09", "Oct": "10", "Nov": "11", "Dec": "12",
}

// ConvertDueDate 把站点日期格式转换为 YYYY-MM-DD
// 格式不符(分段数不为3)时原样返回,不视为错误
func ConvertDueDate(raw string) string {
	parts := strings.Fields(strings.TrimSpace(raw))
	if len(parts) != 3 {
		return raw
	}
	day := parts[0]
	if len(day) == 1 {
		day = "0" + day
	}
	month, ok := monthTable[parts[1]]
	if !ok {
		month = "00"
	}
	return fmt.Sprintf("%s-%s-%s", parts[2], month, day)
}

// ExtractDueDate 从一段文本中提取并规范化到期时间,找不到时返回空串
func ExtractDueDate(text string) string {
	raw := dueDatePattern.FindString(text)
	if raw == "" {
		return ""
	}
	return ConvertDueDate(raw)
}

// ExtractRemainingDays 从限制说明中提取剩余天数
// 没有匹配时返回(0, false),表示缺失而不是零天
func ExtractRemainingDays(message string) (int, bool) {
	m := remainingDaysPattern.FindStringSubmatch(message)
	if m == nil {
		return 0, false
	}
	days, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return days, true
}
