package model

import "errors"

// 오류 종류. 호출 측은 errors.Is 로 구분한다.
var (
	ErrFormat       = errors.New("날짜 형식이 잘못되었습니다")
	ErrMissingData  = errors.New("필수 일정 데이터가 누락되었습니다")
	ErrModelCall    = errors.New("언어 모델 호출 실패")
	ErrJSONParse    = errors.New("언어 모델 응답 JSON 파싱 실패")
	ErrProvider     = errors.New("캘린더 제공자 오류")
	ErrInvalidEvent = errors.New("일정 요청이 올바르지 않습니다")
)
