package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MinLength 密码最小长度
const MinLength = 6

// MaxBytes bcrypt 只接受 72 字节以内的输入（按字节计，多字节字符占多位）
const MaxBytes = 72

var (
	ErrTooShort = errors.New("密码长度不能少于 6 位")
	ErrTooLong  = errors.New("密码长度不能超过 72 字节")
)

// Hash 生成 bcrypt 哈希
// 所有写入密码的路径（注册、修改资料、重置管理员）都必须显式经过此函数
func Hash(plain string) (string, error) {
	if len(plain) < MinLength {
		return "", ErrTooShort
	}
	if len(plain) > MaxBytes {
		return "", ErrTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// IsInvalid 是否为密码取值不合法（而非哈希计算失败）
func IsInvalid(err error) bool {
	return errors.Is(err, ErrTooShort) || errors.Is(err, ErrTooLong)
}

// Verify 比对明文与哈希
func Verify(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
