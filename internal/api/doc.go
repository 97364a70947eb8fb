// Package api 處理 HTTP 請求路由。
//
// SetupRoutes 把 handlers 掛到 gin engine 上，並決定哪些路由需要登入。
// 需要登入的路由會把匿名訪客導向 /login/?next=<原路徑>。
package api
