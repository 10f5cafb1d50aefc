package services

import "errors"

var (
	ErrEnrollmentNotFound  = errors.New("enrollment not found")
	ErrLectureNotFound     = errors.New("lecture not found")
	ErrCourseNotFound      = errors.New("course not found")
	ErrCertificateNotFound = errors.New("certificate not found")
	ErrDuplicateEnrollment = errors.New("user already enrolled in this course")
)
