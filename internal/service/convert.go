package service

import (
	"github.com/rioanand02/education-scheduler-api/internal/dto"
	"github.com/rioanand02/education-scheduler-api/internal/model"
)

func toUserResponse(u *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:         u.UserID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       string(u.Role),
		YearNo:     u.YearNo,
		SemesterNo: u.SemesterNo,
		Batch:      u.Batch,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func toUserBrief(u *model.User) *dto.UserBrief {
	if u == nil {
		return nil
	}
	return &dto.UserBrief{
		ID:    u.UserID,
		Name:  u.Name,
		Email: u.Email,
		Role:  string(u.Role),
	}
}

func toScheduleSummary(s *model.Schedule) dto.ScheduleSummary {
	attendees := make([]string, len(s.Attendees))
	copy(attendees, s.Attendees)
	return dto.ScheduleSummary{
		ID:          s.ScheduleID,
		Title:       s.Title,
		Description: s.Description,
		YearNo:      s.YearNo,
		SemesterNo:  s.SemesterNo,
		Batch:       s.Batch,
		StartAt:     s.StartAt,
		EndAt:       s.EndAt,
		Attendees:   attendees,
		Creator:     toUserBrief(s.Creator),
		Version:     s.Version,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// toScheduleDetail attendees 按课表中的顺序输出，已删除的用户跳过
func toScheduleDetail(s *model.Schedule, attendees []model.User) *dto.ScheduleDetail {
	byID := make(map[string]*model.User, len(attendees))
	for i := range attendees {
		byID[attendees[i].UserID] = &attendees[i]
	}
	briefs := make([]dto.UserBrief, 0, len(s.Attendees))
	for _, id := range s.Attendees {
		if u, ok := byID[id]; ok {
			briefs = append(briefs, *toUserBrief(u))
		}
	}
	ids := make([]string, len(s.Attendees))
	copy(ids, s.Attendees)

	return &dto.ScheduleDetail{
		ID:          s.ScheduleID,
		Title:       s.Title,
		Description: s.Description,
		YearNo:      s.YearNo,
		SemesterNo:  s.SemesterNo,
		Batch:       s.Batch,
		StartAt:     s.StartAt,
		EndAt:       s.EndAt,
		AttendeeIDs: ids,
		Attendees:   briefs,
		Creator:     toUserBrief(s.Creator),
		Version:     s.Version,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}
