// Package repository implements the persistence ports on top of the
// key-value range store. Date segments use yyyy-MM-dd keys, so lexicographic
// child order is chronological order and range bounds are plain date strings.
package repository

import (
	"github.com/attendly/core/internal/domain/entities"
)

const (
	attendanceRoot = "attendance"
	holidaysRoot   = "holidays"
	tasksRoot      = "tasks"
	usersRoot      = "users"
)

func attendanceDayPath(date entities.Date) string {
	return attendanceRoot + "/" + date.String()
}

func attendanceEventPath(date entities.Date, userID string) string {
	return attendanceDayPath(date) + "/" + userID
}

func holidayPath(date entities.Date) string {
	return holidaysRoot + "/" + date.String()
}

func taskBucketPath(userID string, date entities.Date) string {
	return tasksRoot + "/" + userID + "/" + date.String()
}

func taskPath(userID string, date entities.Date, id string) string {
	return taskBucketPath(userID, date) + "/" + id
}

func userPath(uid string) string {
	return usersRoot + "/" + uid
}
