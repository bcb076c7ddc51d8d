package transport

import "time"

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResult struct {
	UserID      uint      `json:"user_id"`
	Role        string    `json:"role"`
	AccessToken string    `json:"access_token"`
	AccessExp   time.Time `json:"expires_at"`
}
