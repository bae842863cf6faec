// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package app

import (
	"fmt"
	"time"

	"github.com/relabs-tech/squeeze_computer/squeeze"
)

func RunMockConsole() error {
	feed := squeeze.NewMockFeed()
	eng := squeeze.New()

	buf := make([]byte, 64)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		n, err := feed.Read(buf)
		if err != nil {
			return err
		}
		eng.Tick(buf[:n])

		fmt.Printf(
			"MAG=%6.3f  AVG=%6.3f  NORM=%6.3f  DERIV=%+6.3f\n",
			eng.Magnitude(),
			eng.Average(),
			eng.Norm(),
			eng.Derivative(),
		)
	}
	return nil
}
