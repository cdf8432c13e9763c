package entity

import (
	"errors"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// MinGrade и MaxGrade ограничивают класс ученика
const (
	MinGrade = 1
	MaxGrade = 4
)

// User представляет ученика в системе
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Password  string    `gorm:"size:100;not null" json:"-"`
	FirstName string    `gorm:"size:50;not null;default:''" json:"first_name"`
	LastName  string    `gorm:"size:50;not null;default:''" json:"last_name"`
	Grade     int       `gorm:"not null" json:"grade"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (User) TableName() string {
	return "users"
}

// ValidGrade проверяет, что класс в диапазоне 1..4
func ValidGrade(grade int) bool {
	return grade >= MinGrade && grade <= MaxGrade
}

// MaxPasswordBytes — предел длины пароля для bcrypt (в байтах, не в символах)
const MaxPasswordBytes = 72

// ErrPasswordTooLong возвращается SetPassword для паролей длиннее MaxPasswordBytes
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// ErrPasswordNotHashed возвращается BeforeSave, если в Password не bcrypt-хеш
var ErrPasswordNotHashed = errors.New("password must be hashed with SetPassword before saving")

// SetPassword хеширует пароль и сохраняет хеш в Password
func (u *User) SetPassword(plain string) error {
	if len(plain) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[User.SetPassword] Ошибка при хешировании пароля для username=%s: %v", u.Username, err)
		return err
	}
	u.Password = string(hashed)
	return nil
}

// BeforeSave не дает записать в базу пароль, который не является bcrypt-хешем.
// Префикс не проверяется: строка обязана разбираться как хеш.
func (u *User) BeforeSave(tx *gorm.DB) error {
	if u.Password == "" {
		return nil
	}
	if _, err := bcrypt.Cost([]byte(u.Password)); err != nil {
		log.Printf("[User.BeforeSave] Попытка сохранить нехешированный пароль для username=%s", u.Username)
		return ErrPasswordNotHashed
	}
	return nil
}

// CheckPassword проверяет, соответствует ли переданный пароль хешу
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}
