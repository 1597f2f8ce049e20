package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword bcrypt 对超过 72 字节的密码直接报错，
// 错误必须上抛，绝不能把空串当哈希落库
func HashPassword(pw string) (string, error) {
	return HashPasswordCost(pw, bcrypt.DefaultCost)
}

// HashPasswordCost 测试里用最低 cost 提速
func HashPasswordCost(pw string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword 哈希格式不合法也只返回 false，不报错
func CheckPassword(pw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}
