package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ketr501215/Ray-Cloud-Web/pkg/response"
	"github.com/ketr501215/Ray-Cloud-Web/pkg/semester"
)

// MustGetNow 读取可选的 ?now= 参数，缺省为当前时间。
// 格式无效时写入 400 响应并返回 false，调用方应直接 return。
func MustGetNow(c *gin.Context) (time.Time, bool) {
	raw := c.Query("now")
	if raw == "" {
		return time.Now().In(semester.Location()), true
	}
	now, err := semester.ParseDate(raw)
	if err != nil {
		response.BadRequest(c, 10001, "now 参数格式无效")
		return time.Time{}, false
	}
	return now, true
}

// MustGetID 解析路径参数 :id 为正整数。
func MustGetID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, 10001, "ID 无效")
		return 0, false
	}
	return id, true
}
