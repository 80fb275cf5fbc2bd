package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTimestamp(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"scene_20230101_120000.tif", "20230101_120000"},
		{"/data/in/20220505_010203/scene_20230101_120000.tif", "20220505_010203"},
		{"S2A_MSIL2A_20240317T101021_20240317_101021_B04.jp2", "20240317_101021"},
		{"prefix123456789_1234567suffix", "23456789_123456"},
		{"plainname.tif", ""},
		{"20230101-120000.tif", ""},
		{"2023010_120000.tif", ""},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ExtractTimestamp(tc.path), tc.path)
	}
}
