package validator

import (
	"regexp"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// gin validator扩展，注册自定义校验规则

var once sync.Once

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// LazyInitGinValidator 给gin内置的validator注册自定义规则，幂等
func LazyInitGinValidator() {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		// eth_addr 链上钱包地址格式
		_ = v.RegisterValidation("wallet", func(fl validator.FieldLevel) bool {
			return addressPattern.MatchString(fl.Field().String())
		})
	})
}

// IsWalletAddress 校验钱包地址格式
func IsWalletAddress(s string) bool {
	return addressPattern.MatchString(s)
}
