package emulator

func (in *Interpreter) execOpcode(op Instruction, pc uint16) (StepResult, error) {
	r := &in.reg
	x, y := op.X, op.Y
	redraw := false

	switch op.Kind {
	case KindClear: // 00E0 clear display
		in.display.Clear()
		redraw = true

	case KindReturn: // 00EE return from subroutine
		addr, err := in.stack.Pop()
		if err != nil {
			return StepResult{}, &StackError{PC: pc, Err: err}
		}
		r.PC = addr

	case KindJump: // 1NNN goto NNN
		r.PC = op.NNN

	case KindCall: // 2NNN call NNN
		if err := in.stack.Push(r.PC); err != nil {
			return StepResult{}, &StackError{PC: pc, Err: err}
		}
		r.PC = op.NNN

	case KindSkipEqImm: // 3XNN if(Vx==NN)
		if r.V[x] == op.NN {
			r.PC += 2
		}

	case KindSkipNeImm: // 4XNN if(Vx!=NN)
		if r.V[x] != op.NN {
			r.PC += 2
		}

	case KindSkipEqReg: // 5XY0 if(Vx==Vy)
		if r.V[x] == r.V[y] {
			r.PC += 2
		}

	case KindLoadImm: // 6XNN Vx = NN
		r.V[x] = op.NN

	case KindAddImm: // 7XNN Vx += NN (carry flag is not changed)
		r.V[x] += op.NN

	case KindLoadReg: // 8XY0 Vx=Vy
		r.V[x] = r.V[y]

	case KindOr: // 8XY1 Vx=Vx|Vy
		r.V[x] |= r.V[y]

	case KindAnd: // 8XY2 Vx=Vx&Vy
		r.V[x] &= r.V[y]

	case KindXor: // 8XY3 Vx=Vx^Vy
		r.V[x] ^= r.V[y]

	case KindAddReg: // 8XY4 Vx += Vy
		sum := uint16(r.V[x]) + uint16(r.V[y])
		r.V[x] = uint8(sum)
		r.setFlag(sum > 0xff)

	case KindSub: // 8XY5 Vx -= Vy
		vx, vy := r.V[x], r.V[y]
		r.V[x] = in.subtract(vx, vy)
		r.setFlag(vx > vy)

	case KindShiftRight: // 8XY6 Vx = Vy>>1 (Vx>>=1)
		src := in.shiftSource(x, y)
		r.V[x] = src >> 1
		r.V[0xf] = src & 0x01

	case KindSubN: // 8XY7 Vx=Vy-Vx
		vx, vy := r.V[x], r.V[y]
		r.V[x] = in.subtract(vy, vx)
		r.setFlag(vy >= vx)

	case KindShiftLeft: // 8XYE Vx = Vy<<1 (Vx<<=1)
		src := in.shiftSource(x, y)
		r.V[x] = src << 1
		r.V[0xf] = src >> 7

	case KindSkipNeReg: // 9XY0 if(Vx!=Vy)
		if r.V[x] != r.V[y] {
			r.PC += 2
		}

	case KindLoadIndex: // ANNN I = NNN
		r.I = op.NNN

	case KindJumpOffset: // BNNN PC=V0+NNN (Vx+NNN)
		offset := r.V[0]
		if in.quirks.JumpUsesVX {
			offset = r.V[x]
		}
		r.PC = op.NNN + uint16(offset)

	case KindRandom: // CXNN Vx=rand()&NN
		r.V[x] = uint8(in.rnd.Intn(256)) & op.NN

	case KindDraw: // DXYN draw(Vx,Vy,N)
		collided := in.draw(r.V[x], r.V[y], op.N)
		r.setFlag(collided)
		redraw = true

	case KindSkipPressed: // EX9E if(key()==Vx)
		if in.keypad.IsPressed(r.V[x]) {
			r.PC += 2
		}

	case KindSkipNotPressed: // EXA1 if(key()!=Vx)
		if !in.keypad.IsPressed(r.V[x]) {
			r.PC += 2
		}

	case KindLoadDelay: // FX07 Vx = get_delay()
		r.V[x] = r.DT

	case KindWaitKey: // FX0A Vx = get_key()
		in.status = WaitingForKey
		in.waitReg = x
		in.logger.Debug("waiting for key")

	case KindSetDelay: // FX15 delay_timer(Vx)
		r.DT = r.V[x]

	case KindSetSound: // FX18 sound_timer(Vx)
		r.ST = r.V[x]

	case KindAddIndex: // FX1E I +=Vx
		sum := uint32(r.I) + uint32(r.V[x])
		r.I = uint16(sum)
		r.setFlag(sum >= MemorySize)

	case KindLoadGlyph: // FX29 I=sprite_addr[Vx]
		r.I = FontBase + uint16(r.V[x]&0xf)*GlyphSize

	case KindStoreBCD: // FX33 set_BCD(Vx)
		v := r.V[x]
		in.mem.Write(r.I, v/100)
		in.mem.Write(r.I+1, (v/10)%10)
		in.mem.Write(r.I+2, v%10)

	case KindStoreRegs: // FX55 reg_dump(Vx,&I)
		for i := uint16(0); i <= uint16(x); i++ {
			in.mem.Write(r.I+i, r.V[i])
		}
		if !in.quirks.MemoryLeavesIndex {
			r.I += uint16(x) + 1
		}

	case KindLoadRegs: // FX65 reg_load(Vx,&I)
		for i := uint16(0); i <= uint16(x); i++ {
			r.V[i] = in.mem.Read(r.I + i)
		}
		if !in.quirks.MemoryLeavesIndex {
			r.I += uint16(x) + 1
		}

	default:
		return StepResult{}, &OpcodeError{PC: pc, Opcode: op.Opcode}
	}

	return StepResult{Redraw: redraw}, nil
}

func (in *Interpreter) shiftSource(x, y uint8) uint8 {
	if in.quirks.ShiftUsesVX {
		return in.reg.V[x]
	}
	return in.reg.V[y]
}

// subtract returns a-b, saturating at zero unless subtraction wraps.
func (in *Interpreter) subtract(a, b uint8) uint8 {
	if in.quirks.SubtractWraps || a >= b {
		return a - b
	}
	return 0
}

// draw XORs an n-row sprite read from I onto the display at (x, y),
// wrapping at the screen edges. It reports whether any lit pixel was
// turned off.
func (in *Interpreter) draw(x, y, n uint8) bool {
	collided := false
	for row := uint8(0); row < n; row++ {
		sprite := in.mem.Read(in.reg.I + uint16(row))
		for col := uint8(0); col < 8; col++ {
			if sprite&(0x80>>col) == 0 {
				continue
			}
			tx := (int(x) + int(col)) % DisplayWidth
			ty := (int(y) + int(row)) % DisplayHeight
			if in.display.Pixel(tx, ty) {
				collided = true
			}
			in.display.Toggle(tx, ty)
		}
	}
	return collided
}
