package ttd

// bodySize is the length of the decompressed body.
var bodySize = func() int {
	var w bodyWriter
	New("").body(&w)
	return len(w.data)
}()

// body walks every field between the title and the file checksum.
func (s *Savegame) body(c codec) {
	m := s.Map
	c.u16(&s.Days)
	c.u16(&s.DayFract)
	s.block(c, blockEffects)
	c.u64(&s.Seed)
	for i := range s.Towns {
		t := &s.Towns[i]
		c.u8(&t.X)
		c.u8(&t.Y)
		c.u16(&t.Population)
		c.u16(&t.nameID)
		t.rest = rest(c, t.rest, townRestSize)
	}
	s.block(c, blockSchedules)
	s.block(c, blockAnimations)
	s.block(c, blockDepots)

	c.u32(&s.NextProcessedTown)
	c.u16(&s.animTicker)
	c.u16(&s.LandscapeCode)
	c.u16(&s.ageTicker)
	c.u16(&s.animTicker2)
	c.u16(&s.nextXY)
	s.block(c, blockEconomy)

	c.raw(m.Owner[:])
	c.raw(m.M2[:])
	for t := range m.M3 {
		c.u16(&m.M3[t])
	}
	c.raw(m.Extra[:])
	s.block(c, blockStations)

	for i := range s.Companies {
		co := &s.Companies[i]
		c.u16(&co.nameID)
		c.u32(&co.NameParts)
		c.u32(&co.Face)
		c.u16(&co.managerID)
		c.u32(&co.ManagerNameParts)
		co.rest = rest(c, co.rest, companyRestSize)
	}
	s.block(c, blockVehicles)
	for i := range s.strings {
		c.raw(s.strings[i][:])
	}
	s.block(c, blockVehicleHash)
	s.block(c, blockSigns)
	c.u16(&s.nextVehicleArray)
	s.block(c, blockSubsidies)

	c.u16(&s.aiTicks)
	c.u16(&s.MainViewX)
	c.u16(&s.MainViewY)
	c.u16(&s.Zoom)
	c.u32(&s.MaximumLoan)
	c.u32(&s.MaximumLoanInternal)
	c.u16(&s.recession)
	c.u16(&s.disaster)
	s.block(c, blockTextIDs)

	c.u8(&s.Player1Company)
	c.u8(&s.Player2Company)
	c.u8(&s.stationTick)
	c.u8(&s.Currency)
	c.u8(&s.MeasurementSystem)
	c.u8(&s.companyTick)
	c.u8(&s.Year)
	c.u8(&s.Month)
	s.block(c, blockDates)
	c.u8(&s.Inflation)
	c.u8(&s.CargoInflation)
	c.u8(&s.InterestRate)
	bits(c, &s.SmallAirports, &s.LargeAirports, &s.Heliports)
	bits(c, &s.DriveOnTheRight, &s.DriveOnTheRightFixed)
	c.u8(&s.TownNameStyle)
	for i := range s.Difficulty {
		c.u16(&s.Difficulty[i])
	}
	c.u8(&s.DifficultyLevel)
	c.u8(&s.LandscapeType)
	c.u8(&s.treeTicker)
	bits(c, &s.CustomVehicleNames, &s.CustomVehicleNamesCanBeChanged)
	c.u8(&s.SnowLine)
	s.block(c, blockCargo)

	c.raw(m.TypeHeight[:])
	c.raw(m.M5[:])
}

func (s *Savegame) block(c codec, id int) {
	if s.opaque[id] == nil {
		s.opaque[id] = layout[id].fresh()
	}
	c.raw(s.opaque[id])
}

func rest(c codec, b []byte, n int) []byte {
	if b == nil {
		b = make([]byte, n)
	}
	c.raw(b)
	return b
}
