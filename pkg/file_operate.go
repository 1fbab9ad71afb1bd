package pkg

import (
	"bytes"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// CheckFileExist 检查文件是否存在
func CheckFileExist(filePath string) (bool, error) {
	_, err := os.Lstat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ReadText 读取文本文件, 根据 BOM 自动识别 UTF-8 / UTF-16
func ReadText(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return DecodeText(f)
}

// DecodeText 读取全部内容, 有 BOM 时按 UTF-16LE / UTF-16BE 解码并去掉 UTF-8 BOM, 否则按 UTF-8 读取
func DecodeText(r io.Reader) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	data, err := io.ReadAll(transform.NewReader(r, dec))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeBytes 对内存中的数据调用 DecodeText
func DecodeBytes(data []byte) (string, error) {
	return DecodeText(bytes.NewReader(data))
}
