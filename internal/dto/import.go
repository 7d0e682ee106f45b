package dto

// ImportResponse Excel 导入结果
type ImportResponse struct {
	Count int `json:"count"`
}
