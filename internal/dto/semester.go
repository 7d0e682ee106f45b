package dto

// ── 学期模块 DTO ──

// SemesterResponse 当前学期概况
type SemesterResponse struct {
	ID        string `json:"id"`         // "1142"
	Label     string `json:"label"`      // "114學年度第2學期"
	Year      int    `json:"year"`       // 民国学年
	Half      int    `json:"half"`       // 1 | 2
	StartDate string `json:"start_date"` // "2026-02-01"
	EndDate   string `json:"end_date"`   // "2026-07-31"
	Days      int    `json:"days"`
	Progress  int    `json:"progress"`
	Week      int    `json:"week"`
	Today     string `json:"today"`
}

// SemesterRangeResponse 学期起止日期
type SemesterRangeResponse struct {
	ID        string `json:"id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Days      int    `json:"days"`
}

// SemesterProgressResponse 学期进度
type SemesterProgressResponse struct {
	ID       string `json:"id"`
	Progress int    `json:"progress"`
	Week     int    `json:"week"`
	Today    string `json:"today"`
}
