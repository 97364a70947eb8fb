// Package middleware 提供了 HTTP 請求處理的中間件。
//
// SessionManager 從 session cookie 解析出目前的訪客（Visitor）並放入 gin.Context，
// LoginRequired 把匿名訪客導向登入頁，RequestLogger 以 zap 記錄每個請求。
package middleware
