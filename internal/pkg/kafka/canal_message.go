package kafka

import (
	"fmt"
	"strconv"
	"strings"
)

// canal 事件类型
const (
	INSERT = "INSERT"
	UPDATE = "UPDATE"
	DELETE = "DELETE"
)

// CanalMessage 定义了 Canal 推送到 Kafka 的 JSON 数据结构
type CanalMessage struct {
	ID       int64    `json:"id"`
	Database string   `json:"database"`
	Table    string   `json:"table"`
	PKNames  []string `json:"pkNames"`
	IsDDL    bool     `json:"isDdl"`
	Type     string   `json:"type"`
	ES       int64    `json:"es"`
	TS       int64    `json:"ts"`
	SQL      string   `json:"sql"`

	// Data 存储变更后的数据
	Data []map[string]interface{} `json:"data"`

	// Old 存储变更前的数据，只包含发生变化的列
	Old []map[string]interface{} `json:"old"`

	SqlType   map[string]int    `json:"sqlType"`
	MysqlType map[string]string `json:"mysqlType"`
}

// Changed 第 i 行的任一列是否在本次 UPDATE 中变化
func (m *CanalMessage) Changed(i int, columns ...string) bool {
	if i >= len(m.Old) {
		return false
	}
	for _, c := range columns {
		if _, ok := m.Old[i][c]; ok {
			return true
		}
	}
	return false
}

// canal 把所有列值都序列化成字符串，NULL 为 nil

func StrToString(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func StrToUint64(v interface{}) uint64 {
	n, _ := strconv.ParseUint(strings.TrimSpace(StrToString(v)), 10, 64)
	return n
}

func StrToBool(v interface{}) bool {
	s := StrToString(v)
	return s == "1" || strings.EqualFold(s, "true")
}
