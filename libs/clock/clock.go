// Copyright (C) 2023 Gobalsky Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.


package clock

import "time"

// Precision is the resolution timestamps are kept at, the one postgres
// stores.
const Precision = time.Microsecond

// Service hands out the wall clock time to the engines.
type Service struct {
	now func() time.Time
}

func New() *Service {
	return &Service{now: time.Now}
}

// NewFixed always returns t, it's meant for tools replaying data.
func NewFixed(t time.Time) *Service {
	return &Service{now: func() time.Time { return t }}
}

// GetTimeNow returns the current time in UTC, truncated to Precision.
func (s *Service) GetTimeNow() time.Time {
	return s.now().UTC().Truncate(Precision)
}
