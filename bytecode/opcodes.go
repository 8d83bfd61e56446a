// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package bytecode

import "fmt"

// Opcode is the operation code stored in the low 11 bits of an instruction token.
type Opcode uint32

// Opcodes in encoding order. The reserved entries are placeholders that keep
// later opcodes at their encoded values.
const (
	OpAdd Opcode = iota
	OpAnd
	OpBreak
	OpBreakc
	OpCall
	OpCallc
	OpCase
	OpContinue
	OpContinuec
	OpCut
	OpDefault
	OpDerivRTX
	OpDerivRTY
	OpDiscard
	OpDiv
	OpDP2
	OpDP3
	OpDP4
	OpElse
	OpEmit
	OpEmitThenCut
	OpEndif
	OpEndloop
	OpEndswitch
	OpEq
	OpExp
	OpFrc
	OpFtoi
	OpFtou
	OpGe
	OpIadd
	OpIf
	OpIeq
	OpIge
	OpIlt
	OpImad
	OpImax
	OpImin
	OpImul
	OpIne
	OpIneg
	OpIshl
	OpIshr
	OpItof
	OpLabel
	OpLd
	OpLdMS
	OpLog
	OpLoop
	OpLt
	OpMad
	OpMin
	OpMax
	OpCustomData
	OpMov
	OpMovc
	OpMul
	OpNE
	OpNop
	OpNot
	OpOr
	OpResinfo
	OpRet
	OpRetc
	OpRoundNE
	OpRoundNI
	OpRoundPI
	OpRoundZ
	OpRsq
	OpSample
	OpSampleC
	OpSampleCLZ
	OpSampleL
	OpSampleD
	OpSampleB
	OpSqrt
	OpSwitch
	OpSincos
	OpUdiv
	OpUlt
	OpUge
	OpUmul
	OpUmad
	OpUmax
	OpUmin
	OpUshr
	OpUtof
	OpXor
	OpDclResource
	OpDclConstantBuffer
	OpDclSampler
	OpDclIndexRange
	OpDclGSOutputPrimitiveTopology
	OpDclGSInputPrimitive
	OpDclMaxOutputVertexCount
	OpDclInput
	OpDclInputSGV
	OpDclInputSIV
	OpDclInputPS
	OpDclInputPSSGV
	OpDclInputPSSIV
	OpDclOutput
	OpDclOutputSGV
	OpDclOutputSIV
	OpDclTemps
	OpDclIndexableTemp
	OpDclGlobalFlags
	OpReserved10
	OpLod
	OpGather4
	OpSamplePos
	OpSampleInfo
	OpReserved101
	OpHSDecls
	OpHSControlPointPhase
	OpHSForkPhase
	OpHSJoinPhase
	OpEmitStream
	OpCutStream
	OpEmitThenCutStream
	OpInterfaceCall
	OpBufinfo
	OpDerivRTXCoarse
	OpDerivRTXFine
	OpDerivRTYCoarse
	OpDerivRTYFine
	OpGather4C
	OpGather4PO
	OpGather4POC
	OpRcp
	OpF32tof16
	OpF16tof32
	OpUaddc
	OpUsubb
	OpCountbits
	OpFirstbitHI
	OpFirstbitLO
	OpFirstbitSHI
	OpUbfe
	OpIbfe
	OpBfi
	OpBfrev
	OpSwapc
	OpDclStream
	OpDclFunctionBody
	OpDclFunctionTable
	OpDclInterface
	OpDclInputControlPointCount
	OpDclOutputControlPointCount
	OpDclTessDomain
	OpDclTessPartitioning
	OpDclTessOutputPrimitive
	OpDclHSMaxTessfactor
	OpDclHSForkPhaseInstanceCount
	OpDclHSJoinPhaseInstanceCount
	OpDclThreadGroup
	OpDclUnorderedAccessViewTyped
	OpDclUnorderedAccessViewRaw
	OpDclUnorderedAccessViewStructured
	OpDclThreadGroupSharedMemoryRaw
	OpDclThreadGroupSharedMemoryStructured
	OpDclResourceRaw
	OpDclResourceStructured
	OpLdUAVTyped
	OpStoreUAVTyped
	OpLdRaw
	OpStoreRaw
	OpLdStructured
	OpStoreStructured
	OpAtomicAnd
	OpAtomicOr
	OpAtomicXor
	OpAtomicCmpStore
	OpAtomicIadd
	OpAtomicImax
	OpAtomicImin
	OpAtomicUmax
	OpAtomicUmin
	OpImmAtomicAlloc
	OpImmAtomicConsume
	OpImmAtomicIadd
	OpImmAtomicAnd
	OpImmAtomicOr
	OpImmAtomicXor
	OpImmAtomicExch
	OpImmAtomicCmpExch
	OpImmAtomicImax
	OpImmAtomicImin
	OpImmAtomicUmax
	OpImmAtomicUmin
	OpSync
	OpDadd
	OpDmax
	OpDmin
	OpDmul
	OpDeq
	OpDge
	OpDlt
	OpDne
	OpDmov
	OpDmovc
	OpDtof
	OpFtod
	OpEvalSnapped
	OpEvalSampleIndex
	OpEvalCentroid
	OpDclGSInstanceCount
	OpAbort
	OpDebugBreak
	OpReserved11
	OpDdiv
	OpDfma
	OpDrcp
	OpMsad
	OpDtoi
	OpDtou
	OpItod
	OpUtod

	// OpcodeCount is one past the last known opcode.
	OpcodeCount
)

type opcodeInfo struct {
	name     string
	operands uint8
	values   uint8
}

// Operand and trailing value counts per opcode. Opcodes whose operands are
// not listed here decode their words into Instruction.Trailing.
var opcodeTable = [OpcodeCount]opcodeInfo{
	OpAdd:                                  {"add", 3, 0},
	OpAnd:                                  {"and", 3, 0},
	OpBreak:                                {"break", 0, 0},
	OpBreakc:                               {"breakc", 1, 0},
	OpCall:                                 {"call", 0, 0},
	OpCallc:                                {"callc", 0, 0},
	OpCase:                                 {"case", 1, 0},
	OpContinue:                             {"continue", 0, 0},
	OpContinuec:                            {"continuec", 1, 0},
	OpCut:                                  {"cut", 0, 0},
	OpDefault:                              {"default", 0, 0},
	OpDerivRTX:                             {"deriv_rtx", 2, 0},
	OpDerivRTY:                             {"deriv_rty", 2, 0},
	OpDiscard:                              {"discard", 1, 0},
	OpDiv:                                  {"div", 3, 0},
	OpDP2:                                  {"dp2", 3, 0},
	OpDP3:                                  {"dp3", 3, 0},
	OpDP4:                                  {"dp4", 3, 0},
	OpElse:                                 {"else", 0, 0},
	OpEmit:                                 {"emit", 0, 0},
	OpEmitThenCut:                          {"emitthencut", 0, 0},
	OpEndif:                                {"endif", 0, 0},
	OpEndloop:                              {"endloop", 0, 0},
	OpEndswitch:                            {"endswitch", 0, 0},
	OpEq:                                   {"eq", 3, 0},
	OpExp:                                  {"exp", 2, 0},
	OpFrc:                                  {"frc", 2, 0},
	OpFtoi:                                 {"ftoi", 2, 0},
	OpFtou:                                 {"ftou", 2, 0},
	OpGe:                                   {"ge", 3, 0},
	OpIadd:                                 {"iadd", 3, 0},
	OpIf:                                   {"if", 1, 0},
	OpIeq:                                  {"ieq", 3, 0},
	OpIge:                                  {"ige", 3, 0},
	OpIlt:                                  {"ilt", 3, 0},
	OpImad:                                 {"imad", 4, 0},
	OpImax:                                 {"imax", 3, 0},
	OpImin:                                 {"imin", 3, 0},
	OpImul:                                 {"imul", 4, 0},
	OpIne:                                  {"ine", 3, 0},
	OpIneg:                                 {"ineg", 2, 0},
	OpIshl:                                 {"ishl", 3, 0},
	OpIshr:                                 {"ishr", 3, 0},
	OpItof:                                 {"itof", 2, 0},
	OpLabel:                                {"label", 0, 0},
	OpLd:                                   {"ld", 3, 0},
	OpLdMS:                                 {"ld_ms", 4, 0},
	OpLog:                                  {"log", 2, 0},
	OpLoop:                                 {"loop", 0, 0},
	OpLt:                                   {"lt", 3, 0},
	OpMad:                                  {"mad", 4, 0},
	OpMin:                                  {"min", 3, 0},
	OpMax:                                  {"max", 3, 0},
	OpCustomData:                           {"customdata", 0, 1},
	OpMov:                                  {"mov", 2, 0},
	OpMovc:                                 {"movc", 4, 0},
	OpMul:                                  {"mul", 3, 0},
	OpNE:                                   {"ne", 3, 0},
	OpNop:                                  {"nop", 0, 0},
	OpNot:                                  {"not", 2, 0},
	OpOr:                                   {"or", 3, 0},
	OpResinfo:                              {"resinfo", 3, 0},
	OpRet:                                  {"ret", 0, 0},
	OpRetc:                                 {"retc", 1, 0},
	OpRoundNE:                              {"round_ne", 2, 0},
	OpRoundNI:                              {"round_ni", 2, 0},
	OpRoundPI:                              {"round_pi", 2, 0},
	OpRoundZ:                               {"round_z", 2, 0},
	OpRsq:                                  {"rsq", 2, 0},
	OpSample:                               {"sample", 4, 0},
	OpSampleC:                              {"sample_c", 5, 0},
	OpSampleCLZ:                            {"sample_c_lz", 5, 0},
	OpSampleL:                              {"sample_l", 5, 0},
	OpSampleD:                              {"sample_d", 6, 0},
	OpSampleB:                              {"sample_b", 5, 0},
	OpSqrt:                                 {"sqrt", 2, 0},
	OpSwitch:                               {"switch", 1, 0},
	OpSincos:                               {"sincos", 3, 0},
	OpUdiv:                                 {"udiv", 4, 0},
	OpUlt:                                  {"ult", 3, 0},
	OpUge:                                  {"uge", 3, 0},
	OpUmul:                                 {"umul", 4, 0},
	OpUmad:                                 {"umad", 4, 0},
	OpUmax:                                 {"umax", 3, 0},
	OpUmin:                                 {"umin", 3, 0},
	OpUshr:                                 {"ushr", 3, 0},
	OpUtof:                                 {"utof", 2, 0},
	OpXor:                                  {"xor", 3, 0},
	OpDclResource:                          {"dcl_resource", 1, 1},
	OpDclConstantBuffer:                    {"dcl_constantbuffer", 1, 0},
	OpDclSampler:                           {"dcl_sampler", 1, 0},
	OpDclIndexRange:                        {"dcl_indexrange", 1, 1},
	OpDclGSOutputPrimitiveTopology:         {"dcl_outputtopology", 1, 0},
	OpDclGSInputPrimitive:                  {"dcl_inputprimitive", 1, 0},
	OpDclMaxOutputVertexCount:              {"dcl_maxout", 0, 1},
	OpDclInput:                             {"dcl_input", 1, 0},
	OpDclInputSGV:                          {"dcl_input_sgv", 1, 1},
	OpDclInputSIV:                          {"dcl_input_siv", 1, 0},
	OpDclInputPS:                           {"dcl_input_ps", 1, 0},
	OpDclInputPSSGV:                        {"dcl_input_ps_sgv", 1, 1},
	OpDclInputPSSIV:                        {"dcl_input_ps_siv", 1, 1},
	OpDclOutput:                            {"dcl_output", 1, 0},
	OpDclOutputSGV:                         {"dcl_output_sgv", 1, 0},
	OpDclOutputSIV:                         {"dcl_output_siv", 1, 1},
	OpDclTemps:                             {"dcl_temps", 0, 1},
	OpDclIndexableTemp:                     {"dcl_indexableTemp", 0, 3},
	OpDclGlobalFlags:                       {"dcl_globalFlags", 0, 0},
	OpReserved10:                           {"reserved10", 0, 0},
	OpLod:                                  {"lod", 4, 0},
	OpGather4:                              {"gather4", 4, 0},
	OpSamplePos:                            {"sample_pos", 0, 0},
	OpSampleInfo:                           {"sample_info", 0, 0},
	OpReserved101:                          {"reserved10_1", 0, 0},
	OpHSDecls:                              {"hs_decls", 0, 0},
	OpHSControlPointPhase:                  {"hs_control_point_phase", 0, 0},
	OpHSForkPhase:                          {"hs_fork_phase", 0, 0},
	OpHSJoinPhase:                          {"hs_join_phase", 0, 0},
	OpEmitStream:                           {"emit_stream", 0, 0},
	OpCutStream:                            {"cut_stream", 0, 0},
	OpEmitThenCutStream:                    {"emitthencut_stream", 1, 0},
	OpInterfaceCall:                        {"interface_call", 1, 0},
	OpBufinfo:                              {"bufinfo", 0, 0},
	OpDerivRTXCoarse:                       {"deriv_rtx_coarse", 2, 0},
	OpDerivRTXFine:                         {"deriv_rtx_fine", 2, 0},
	OpDerivRTYCoarse:                       {"deriv_rty_coarse", 2, 0},
	OpDerivRTYFine:                         {"deriv_rty_fine", 2, 0},
	OpGather4C:                             {"gather4_c", 5, 0},
	OpGather4PO:                            {"gather4_po", 5, 0},
	OpGather4POC:                           {"gather4_po_c", 0, 0},
	OpRcp:                                  {"rcp", 2, 0},
	OpF32tof16:                             {"f32tof16", 0, 0},
	OpF16tof32:                             {"f16tof32", 0, 0},
	OpUaddc:                                {"uaddc", 0, 0},
	OpUsubb:                                {"usubb", 0, 0},
	OpCountbits:                            {"countbits", 0, 0},
	OpFirstbitHI:                           {"firstbit_hi", 0, 0},
	OpFirstbitLO:                           {"firstbit_lo", 0, 0},
	OpFirstbitSHI:                          {"firstbit_shi", 0, 0},
	OpUbfe:                                 {"ubfe", 4, 0},
	OpIbfe:                                 {"ibfe", 4, 0},
	OpBfi:                                  {"bfi", 5, 0},
	OpBfrev:                                {"bfrev", 0, 0},
	OpSwapc:                                {"swapc", 5, 0},
	OpDclStream:                            {"dcl_stream", 0, 0},
	OpDclFunctionBody:                      {"dcl_function_body", 1, 0},
	OpDclFunctionTable:                     {"dcl_function_table", 0, 0},
	OpDclInterface:                         {"dcl_interface", 0, 0},
	OpDclInputControlPointCount:            {"dcl_input_control_point_count", 0, 0},
	OpDclOutputControlPointCount:           {"dcl_output_control_point_count", 0, 0},
	OpDclTessDomain:                        {"dcl_tessellator_domain", 0, 0},
	OpDclTessPartitioning:                  {"dcl_tessellator_partitioning", 0, 0},
	OpDclTessOutputPrimitive:               {"dcl_tessellator_output_primitive", 0, 0},
	OpDclHSMaxTessfactor:                   {"dcl_hs_max_tessfactor", 0, 0},
	OpDclHSForkPhaseInstanceCount:          {"dcl_hs_fork_phase_instance_count", 0, 0},
	OpDclHSJoinPhaseInstanceCount:          {"dcl_hs_join_phase_instance_count", 0, 0},
	OpDclThreadGroup:                       {"dcl_thread_group", 0, 3},
	OpDclUnorderedAccessViewTyped:          {"dcl_uav_typed", 1, 1},
	OpDclUnorderedAccessViewRaw:            {"dcl_uav_raw", 1, 0},
	OpDclUnorderedAccessViewStructured:     {"dcl_uav_structured", 1, 1},
	OpDclThreadGroupSharedMemoryRaw:        {"dcl_tgsm_raw", 1, 1},
	OpDclThreadGroupSharedMemoryStructured: {"dcl_tgsm_structured", 1, 2},
	OpDclResourceRaw:                       {"dcl_resource_raw", 1, 0},
	OpDclResourceStructured:                {"dcl_resource_structured", 1, 1},
	OpLdUAVTyped:                           {"ld_uav_typed", 3, 0},
	OpStoreUAVTyped:                        {"store_uav_typed", 3, 0},
	OpLdRaw:                                {"ld_raw", 3, 0},
	OpStoreRaw:                             {"store_raw", 3, 0},
	OpLdStructured:                         {"ld_structured", 4, 0},
	OpStoreStructured:                      {"store_structured", 4, 0},
	OpAtomicAnd:                            {"atomic_and", 3, 0},
	OpAtomicOr:                             {"atomic_or", 3, 0},
	OpAtomicXor:                            {"atomic_xor", 3, 0},
	OpAtomicCmpStore:                       {"atomic_cmp_store", 3, 0},
	OpAtomicIadd:                           {"atomic_iadd", 3, 0},
	OpAtomicImax:                           {"atomic_imax", 3, 0},
	OpAtomicImin:                           {"atomic_imin", 3, 0},
	OpAtomicUmax:                           {"atomic_umax", 3, 0},
	OpAtomicUmin:                           {"atomic_umin", 3, 0},
	OpImmAtomicAlloc:                       {"imm_atomic_alloc", 2, 0},
	OpImmAtomicConsume:                     {"imm_atomic_consume", 2, 0},
	OpImmAtomicIadd:                        {"imm_atomic_iadd", 0, 0},
	OpImmAtomicAnd:                         {"imm_atomic_and", 0, 0},
	OpImmAtomicOr:                          {"imm_atomic_or", 0, 0},
	OpImmAtomicXor:                         {"imm_atomic_xor", 0, 0},
	OpImmAtomicExch:                        {"imm_atomic_exch", 0, 0},
	OpImmAtomicCmpExch:                     {"imm_atomic_cmp_exch", 0, 0},
	OpImmAtomicImax:                        {"imm_atomic_imax", 0, 0},
	OpImmAtomicImin:                        {"imm_atomic_imin", 0, 0},
	OpImmAtomicUmax:                        {"imm_atomic_umax", 0, 0},
	OpImmAtomicUmin:                        {"imm_atomic_umin", 0, 0},
	OpSync:                                 {"sync", 0, 0},
	OpDadd:                                 {"dadd", 3, 0},
	OpDmax:                                 {"dmax", 3, 0},
	OpDmin:                                 {"dmin", 3, 0},
	OpDmul:                                 {"dmul", 3, 0},
	OpDeq:                                  {"deq", 3, 0},
	OpDge:                                  {"dge", 3, 0},
	OpDlt:                                  {"dlt", 3, 0},
	OpDne:                                  {"dne", 3, 0},
	OpDmov:                                 {"dmov", 2, 0},
	OpDmovc:                                {"dmovc", 4, 0},
	OpDtof:                                 {"dtof", 0, 0},
	OpFtod:                                 {"ftod", 0, 0},
	OpEvalSnapped:                          {"eval_snapped", 3, 0},
	OpEvalSampleIndex:                      {"eval_sample_index", 3, 0},
	OpEvalCentroid:                         {"eval_centroid", 2, 0},
	OpDclGSInstanceCount:                   {"dcl_gsinstances", 0, 1},
	OpAbort:                                {"abort", 0, 0},
	OpDebugBreak:                           {"debug_break", 0, 0},
	OpReserved11:                           {"reserved11", 0, 0},
	OpDdiv:                                 {"ddiv", 0, 0},
	OpDfma:                                 {"dfma", 0, 0},
	OpDrcp:                                 {"drcp", 0, 0},
	OpMsad:                                 {"msad", 0, 0},
	OpDtoi:                                 {"dtoi", 0, 0},
	OpDtou:                                 {"dtou", 0, 0},
	OpItod:                                 {"itod", 0, 0},
	OpUtod:                                 {"utod", 0, 0},
}

// String returns the assembler mnemonic of the opcode.
func (op Opcode) String() string {
	if op < OpcodeCount {
		return opcodeTable[op].name
	}
	return fmt.Sprintf("opcode(%d)", uint32(op))
}

// Valid reports whether op is a known opcode.
func (op Opcode) Valid() bool { return op < OpcodeCount }

// NumOperands returns the number of operands decoded for op.
func (op Opcode) NumOperands() int {
	if op < OpcodeCount {
		return int(opcodeTable[op].operands)
	}
	return 0
}

// NumValues returns the number of raw words that follow the operands of op.
func (op Opcode) NumValues() int {
	if op < OpcodeCount {
		return int(opcodeTable[op].values)
	}
	return 0
}

// IsDeclaration reports whether op is a dcl_* opcode.
func (op Opcode) IsDeclaration() bool {
	switch {
	case op >= OpDclResource && op <= OpDclGlobalFlags:
		return true
	case op >= OpDclStream && op <= OpDclResourceStructured:
		return true
	case op == OpDclGSInstanceCount:
		return true
	}
	return false
}
