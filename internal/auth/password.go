package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// Стоимость bcrypt. Специально медленный хеш: защита паролей скачивания.
const bcryptCost = 10

// HashPassword создает bcrypt хеш пароля
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(bytes), err
}

// CheckPasswordHash проверяет пароль против хеша.
// Сравнение выполняет bcrypt, время ответа не зависит от места несовпадения.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
