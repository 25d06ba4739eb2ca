package main

import "dermacare/internal/app"

// @title           DermaCare Auth API
// @version         1.0
// @description     Регистрация с подтверждением почты по одноразовому коду и сессии на паре access/refresh токенов.
// @BasePath        /
func main() {
	app.Run()
}
