// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package modelmocks

import (
	"go.uber.org/mock/gomock"

	"github.com/choria-io/gauntlet/model"
)

func NewHarness(facts map[string]any, settings model.Settings, noop bool, ctl *gomock.Controller) (*MockHarness, *MockLogger) {
	logger := NewMockLogger(ctl)
	harness := NewMockHarness(ctl)

	harness.EXPECT().Logger(gomock.Any()).AnyTimes().Return(logger, nil)
	harness.EXPECT().Facts(gomock.Any()).AnyTimes().Return(facts, nil)
	harness.EXPECT().Settings().AnyTimes().Return(settings)
	harness.EXPECT().NoopMode().AnyTimes().Return(noop)
	harness.EXPECT().UserLogger().AnyTimes().Return(logger)
	harness.EXPECT().RecordEvent(gomock.Any()).AnyTimes().Return(nil)

	logger.EXPECT().Info(gomock.Any(), gomock.Any()).AnyTimes()
	logger.EXPECT().Debug(gomock.Any(), gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any(), gomock.Any()).AnyTimes()
	logger.EXPECT().Error(gomock.Any(), gomock.Any()).AnyTimes()
	logger.EXPECT().With(gomock.Any()).AnyTimes().Return(logger)

	return harness, logger
}
