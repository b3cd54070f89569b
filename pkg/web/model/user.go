package model

// 请求/响应数据结构。必填校验放在 auth 网关里做，以便返回统一的业务错误文案
type (
	LoginReq struct {
		Username   string  `json:"username" form:"username"`
		Password   string  `json:"password" form:"password"`
		Captcha    *string `json:"captcha" form:"captcha"`
		CaptchaKey string  `json:"captchaKey" form:"captchaKey"`
	}

	TokenReq struct {
		Username string `json:"username" form:"username"`
		Password string `json:"password" form:"password"`
	}

	RefreshReq struct {
		Refresh string `json:"refresh" form:"refresh"`
	}

	RefreshRes struct {
		Access string `json:"access"`
	}

	// DocsLoginReq 文档页登录表单，password 为明文
	DocsLoginReq struct {
		Username string `json:"username" form:"username"`
		Password string `json:"password" form:"password"`
	}
)

// EmptyData 验证码关闭时返回 {}
type EmptyData struct{}
