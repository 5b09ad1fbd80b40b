package service

import (
	"github.com/rioanand02/education-scheduler-api/internal/dto"
)

// resolvePagination 未传取默认值；显式传入的非法值直接拒绝，不做静默修正
func resolvePagination(p dto.PaginationRequest) (page, limit int, err error) {
	page, limit = dto.DefaultPage, dto.DefaultLimit
	if p.Page != nil {
		if *p.Page <= 0 {
			return 0, 0, invalidParams("page 必须为正整数")
		}
		page = *p.Page
	}
	if p.Limit != nil {
		if *p.Limit <= 0 {
			return 0, 0, invalidParams("limit 必须为正整数")
		}
		if *p.Limit > dto.MaxLimit {
			return 0, 0, invalidParams("limit 不能超过 %d", dto.MaxLimit)
		}
		limit = *p.Limit
	}
	return page, limit, nil
}
